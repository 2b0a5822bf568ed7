package models

import (
	"fmt"
	"time"
)

// ExperimentStatus represents the status of an experiment run
type ExperimentStatus string

const (
	ExperimentStatusPending   ExperimentStatus = "pending"
	ExperimentStatusRunning   ExperimentStatus = "running"
	ExperimentStatusCompleted ExperimentStatus = "completed"
	ExperimentStatusFailed    ExperimentStatus = "failed"
	ExperimentStatusCancelled ExperimentStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible
func (s ExperimentStatus) IsTerminal() bool {
	switch s {
	case ExperimentStatusCompleted, ExperimentStatusFailed, ExperimentStatusCancelled:
		return true
	}
	return false
}

// ExperimentKind selects which experiment family a run executes
type ExperimentKind string

const (
	ExperimentKindIndividual ExperimentKind = "individual"
	ExperimentKindAllMethods ExperimentKind = "all_methods"
	ExperimentKindGenetic    ExperimentKind = "genetic"
)

// ParseExperimentKind maps a name to an ExperimentKind
func ParseExperimentKind(s string) (ExperimentKind, error) {
	switch ExperimentKind(s) {
	case ExperimentKindIndividual, ExperimentKindAllMethods, ExperimentKindGenetic:
		return ExperimentKind(s), nil
	}
	return "", fmt.Errorf("unknown experiment kind %q (must be individual, all_methods, or genetic)", s)
}

// ProblemConfig describes the random instances drawn for a run.
// It is immutable for the lifetime of a run.
type ProblemConfig struct {
	ProblemSize   int `json:"problem_size" yaml:"problem_size" validate:"gt=0"`
	Capacity      int `json:"capacity" yaml:"capacity" validate:"gt=0"`
	MinItemWeight int `json:"min_item_weight" yaml:"min_item_weight" validate:"gt=0"`
	MaxItemWeight int `json:"max_item_weight" yaml:"max_item_weight" validate:"gt=0,gtefield=MinItemWeight"`
}

// KnapsackInstance holds per-knapsack item weights and costs
type KnapsackInstance struct {
	Weights [][]float64 `json:"weights"`
	Costs   [][]float64 `json:"costs"`
}

// Knapsacks returns the number of knapsacks in the instance
func (k KnapsackInstance) Knapsacks() int {
	return len(k.Weights)
}

// Validate checks that weights and costs line up per knapsack
func (k KnapsackInstance) Validate() error {
	if len(k.Weights) != len(k.Costs) {
		return fmt.Errorf("instance has %d weight rows but %d cost rows", len(k.Weights), len(k.Costs))
	}
	for i := range k.Weights {
		if len(k.Weights[i]) != len(k.Costs[i]) {
			return fmt.Errorf("knapsack %d has %d weights but %d costs", i, len(k.Weights[i]), len(k.Costs[i]))
		}
	}
	return nil
}

// Partition is a list of positive parts summing to a requested total
type Partition []int

// Sum returns the total of all parts
func (p Partition) Sum() int {
	total := 0
	for _, v := range p {
		total += v
	}
	return total
}

// MethodSeries is the ordered list of outcomes of one method, one per repetition
type MethodSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// DescriptiveStats summarizes a series
type DescriptiveStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// GAConfiguration is one genetic algorithm parameter set
type GAConfiguration struct {
	PopulationSize int     `json:"population_size" yaml:"population_size" validate:"gt=0"`
	Generations    int     `json:"generations" yaml:"generations" validate:"gt=0"`
	CrossoverRate  float64 `json:"crossover_rate" yaml:"crossover_rate" validate:"gte=0,lte=1"`
	MutationRate   float64 `json:"mutation_rate" yaml:"mutation_rate" validate:"gte=0,lte=1"`
	EliteFraction  float64 `json:"elite_fraction" yaml:"elite_fraction" validate:"gte=0,lte=1"`
}

// GAExperimentResult holds the outcomes of one GA configuration
type GAExperimentResult struct {
	Config        GAConfiguration  `json:"config"`
	Outcomes      []float64        `json:"outcomes"`
	Stats         DescriptiveStats `json:"stats"`
	Improvements  []float64        `json:"improvements"`
	ExecutionTime time.Duration    `json:"execution_time"`
}

// Favors names the bucket a comparison verdict prefers
type Favors string

const (
	FavorsLow  Favors = "low"
	FavorsHigh Favors = "high"
	FavorsNone Favors = "none"
)

// ComparisonVerdict is the low/high bucket comparison for one GA field
type ComparisonVerdict struct {
	Field     string  `json:"field"`
	LowMean   float64 `json:"low_mean"`
	HighMean  float64 `json:"high_mean"`
	LowCount  int     `json:"low_count"`
	HighCount int     `json:"high_count"`
	Favors    Favors  `json:"favors"`
	Message   string  `json:"message"`
}
