package solver

import (
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/utils"
)

// Instance is a generated problem together with its starting solution.
// Every method in a repetition is invoked on the same Instance.
type Instance struct {
	Problem    models.KnapsackInstance `json:"problem"`
	Lengths    []int                   `json:"lengths"`
	MaxWeights []int                   `json:"maximum_weights"`
	Solutions  [][]int                 `json:"solutions"`
	Values     []float64               `json:"current_values"`
}

// InitialValue is the aggregate value of the starting solution.
func (i *Instance) InitialValue() float64 {
	return utils.Sum(i.Values)
}

// Result is the outcome of one method invocation.
type Result struct {
	Solutions [][]int   `json:"solutions,omitempty"`
	Values    []float64 `json:"current_values"`
}

// Value is the sum of per-knapsack values.
func (r Result) Value() float64 {
	return utils.Sum(r.Values)
}
