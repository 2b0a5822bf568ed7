// Package analysis compares genetic algorithm configurations by splitting
// them into low and high buckets per parameter.
package analysis

import (
	"fmt"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/stats"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// Field is a GA configuration parameter that can be analyzed
type Field string

const (
	FieldPopulation  Field = "population_size"
	FieldGenerations Field = "generations"
	FieldCrossover   Field = "crossover_rate"
	FieldMutation    Field = "mutation_rate"
	FieldElite       Field = "elite_fraction"
)

// Fields lists every analyzed field in report order
var Fields = []Field{FieldPopulation, FieldGenerations, FieldCrossover, FieldMutation, FieldElite}

type rule struct {
	// threshold is the inclusive upper bound of the low bucket
	threshold float64
	value     func(models.GAConfiguration) float64
	low       string
	high      string
	neutral   string
}

var rules = map[Field]rule{
	FieldPopulation: {
		threshold: 100,
		value:     func(c models.GAConfiguration) float64 { return float64(c.PopulationSize) },
		low:       "smaller populations are more efficient for this problem",
		high:      "larger populations tend to produce better results",
		neutral:   "insufficient data to analyze population impact",
	},
	FieldGenerations: {
		threshold: 200,
		value:     func(c models.GAConfiguration) float64 { return float64(c.Generations) },
		low:       "few generations are enough for this problem",
		high:      "more generations lead to better solutions",
		neutral:   "insufficient data to analyze generation impact",
	},
	FieldCrossover: {
		threshold: 0.7,
		value:     func(c models.GAConfiguration) float64 { return c.CrossoverRate },
		low:       "low crossover rate is more effective",
		high:      "high crossover rate improves results",
		neutral:   "default crossover rate (0.7) is adequate",
	},
	FieldMutation: {
		threshold: 0.01,
		value:     func(c models.GAConfiguration) float64 { return c.MutationRate },
		low:       "low mutation rate is more stable",
		high:      "high mutation rate prevents premature convergence",
		neutral:   "default mutation rate (0.01) is adequate",
	},
	FieldElite: {
		threshold: 0.1,
		value:     func(c models.GAConfiguration) float64 { return c.EliteFraction },
		low:       "less elitism preserves diversity",
		high:      "more elitism speeds up convergence",
		neutral:   "default elitism (10%) is adequate",
	},
}

// Compare buckets experiments by field and compares the mean of the
// per-configuration mean outcomes. Ties favor the low bucket; an empty
// bucket yields a neutral verdict. Experiments without outcomes are ignored.
func Compare(experiments []models.GAExperimentResult, field Field) (models.ComparisonVerdict, error) {
	r, ok := rules[field]
	if !ok {
		return models.ComparisonVerdict{}, fmt.Errorf("unknown comparison field %q", field)
	}

	var low, high []float64
	for _, e := range experiments {
		if len(e.Outcomes) == 0 {
			continue
		}
		mean := stats.Compute(e.Outcomes).Mean
		if r.value(e.Config) <= r.threshold {
			low = append(low, mean)
		} else {
			high = append(high, mean)
		}
	}

	v := models.ComparisonVerdict{
		Field:     string(field),
		LowCount:  len(low),
		HighCount: len(high),
		LowMean:   stats.Compute(low).Mean,
		HighMean:  stats.Compute(high).Mean,
	}
	switch {
	case len(low) == 0 || len(high) == 0:
		v.Favors = models.FavorsNone
		v.Message = r.neutral
	case v.HighMean > v.LowMean:
		v.Favors = models.FavorsHigh
		v.Message = r.high
	default:
		v.Favors = models.FavorsLow
		v.Message = r.low
	}
	return v, nil
}

// CompareAll returns one verdict per field, in Fields order
func CompareAll(experiments []models.GAExperimentResult) []models.ComparisonVerdict {
	out := make([]models.ComparisonVerdict, 0, len(Fields))
	for _, f := range Fields {
		v, _ := Compare(experiments, f)
		out = append(out, v)
	}
	return out
}
