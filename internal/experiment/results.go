package experiment

import (
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/stats"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// IndividualResults holds one series per method plus the initial baseline.
// Series[0] is always the baseline.
type IndividualResults struct {
	Problem     models.ProblemConfig  `json:"problem"`
	Repetitions int                   `json:"repetitions"`
	Series      []models.MethodSeries `json:"series"`
	// Fallbacks counts trials per series that used the initial value.
	Fallbacks map[string]int `json:"fallbacks,omitempty"`
}

// Lookup returns the values of the named series
func (r *IndividualResults) Lookup(name string) ([]float64, bool) {
	if r == nil {
		return nil, false
	}
	return lookup(r.Series, name)
}

func lookup(series []models.MethodSeries, name string) ([]float64, bool) {
	for _, s := range series {
		if s.Name == name {
			return s.Values, true
		}
	}
	return nil, false
}

// MethodTrial is one successful method invocation of the all-methods experiment
type MethodTrial struct {
	Method           string      `json:"method"`
	Repetition       int         `json:"repetition"`
	InitialValues    []float64   `json:"initial_values"`
	FinalValues      []float64   `json:"final_values"`
	InitialSolutions [][]int     `json:"initial_solutions"`
	FinalSolutions   [][]int     `json:"final_solutions,omitempty"`
	Weights          [][]float64 `json:"weights"`
	Costs            [][]float64 `json:"costs"`
}

// AllMethodsResults holds the series of the all-methods experiment and the
// per-trial rows used for comparison summaries.
type AllMethodsResults struct {
	Problem     models.ProblemConfig  `json:"problem"`
	Repetitions int                   `json:"repetitions"`
	Series      []models.MethodSeries `json:"series"`
	Fallbacks   map[string]int        `json:"fallbacks,omitempty"`
	Trials      []MethodTrial         `json:"trials"`
}

// Lookup returns the values of the named series
func (r *AllMethodsResults) Lookup(name string) ([]float64, bool) {
	if r == nil {
		return nil, false
	}
	return lookup(r.Series, name)
}

// GASummary aggregates a genetic algorithm sweep
type GASummary struct {
	TotalExperiments     int           `json:"total_experiments"`
	BestOverallValue     float64       `json:"best_overall_value"`
	AverageImprovement   float64       `json:"average_improvement"`
	TotalExecutionTime   time.Duration `json:"total_execution_time"`
	AverageExecutionTime time.Duration `json:"average_execution_time"`
}

// GAReportData is the result of a genetic algorithm sweep
type GAReportData struct {
	Problem           models.ProblemConfig        `json:"problem"`
	Repetitions       int                         `json:"repetitions"`
	Experiments       []models.GAExperimentResult `json:"experiments"`
	BestConfiguration models.GAConfiguration      `json:"best_configuration"`
	Summary           GASummary                   `json:"summary"`
	Comparison        []models.ComparisonVerdict  `json:"comparison"`
}

// MethodResult is a display-ready series with stats computed at call time
type MethodResult struct {
	Name  string                  `json:"name"`
	Data  []float64               `json:"data"`
	Stats models.DescriptiveStats `json:"stats"`
}

// PrepareMethodResults returns every series of results in display order
// with freshly computed statistics.
func PrepareMethodResults(results *IndividualResults) []MethodResult {
	if results == nil {
		return nil
	}
	return prepare(results.Series)
}

// PrepareAllMethodsResults is PrepareMethodResults for the all-methods experiment
func PrepareAllMethodsResults(results *AllMethodsResults) []MethodResult {
	if results == nil {
		return nil
	}
	return prepare(results.Series)
}

func prepare(series []models.MethodSeries) []MethodResult {
	out := make([]MethodResult, 0, len(series))
	for _, s := range series {
		out = append(out, MethodResult{
			Name:  s.Name,
			Data:  s.Values,
			Stats: stats.Compute(s.Values),
		})
	}
	return out
}
