package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   models.DescriptiveStats
	}{
		{"empty", nil, models.DescriptiveStats{}},
		{"single", []float64{5}, models.DescriptiveStats{Min: 5, Max: 5, Mean: 5, Std: 0}},
		{"textbook", []float64{2, 4, 4, 4, 5, 5, 7, 9}, models.DescriptiveStats{Min: 2, Max: 9, Mean: 5, Std: 2}},
		{"negative", []float64{-3, 3}, models.DescriptiveStats{Min: -3, Max: 3, Mean: 0, Std: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.values)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
			assert.InDelta(t, tt.want.Std, got.Std, 1e-9)
		})
	}
}

func TestComputeIsPure(t *testing.T) {
	values := []float64{9, 1, 5, 3}
	first := Compute(values)
	second := Compute(values)
	assert.Equal(t, first, second)
	assert.Equal(t, []float64{9, 1, 5, 3}, values, "input must not be reordered")
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3})
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 2.0, s.Mean, 1e-9)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, models.DescriptiveStats{}, empty.DescriptiveStats)
}
