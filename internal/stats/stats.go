// Package stats reduces outcome series to descriptive statistics.
package stats

import (
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/utils"
)

// Compute returns min, max, mean and population standard deviation.
// An empty series yields all zeros.
func Compute(values []float64) models.DescriptiveStats {
	if len(values) == 0 {
		return models.DescriptiveStats{}
	}
	min, max := utils.MinMax(values)
	return models.DescriptiveStats{
		Min:  min,
		Max:  max,
		Mean: utils.Mean(values),
		Std:  utils.StdDev(values),
	}
}

// Summary is DescriptiveStats plus the sample count, used in reports.
type Summary struct {
	models.DescriptiveStats
	Count int `json:"count"`
}

// Summarize computes stats and records how many samples they cover.
func Summarize(values []float64) Summary {
	return Summary{
		DescriptiveStats: Compute(values),
		Count:            len(values),
	}
}
