// Package partition splits an integer total into a random number of
// positive parts.
package partition

import (
	"errors"
	"fmt"
	"sort"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// ErrInvalidPartition is returned when total cannot be split into the
// requested number of positive parts.
var ErrInvalidPartition = errors.New("invalid partition")

// Rand is the randomness Split draws from.
type Rand interface {
	Intn(n int) int
}

// Split returns parts positive integers summing to total. Breakpoints are
// chosen uniformly without replacement from the open interval (0, total).
func Split(rng Rand, total, parts int) (models.Partition, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: total must be positive, got %d", ErrInvalidPartition, total)
	}
	if parts <= 1 {
		return models.Partition{total}, nil
	}
	if total < parts {
		return nil, fmt.Errorf("%w: cannot split %d into %d positive parts", ErrInvalidPartition, total, parts)
	}

	breaks := breakpoints(rng, total, parts-1)
	breaks = append(breaks, 0, total)
	sort.Ints(breaks)

	out := make(models.Partition, parts)
	for i := 1; i < len(breaks); i++ {
		out[i-1] = breaks[i] - breaks[i-1]
	}
	return out, nil
}

// breakpoints picks k distinct integers from [1, total-1]. When k is more
// than half of the range it picks the excluded ones instead.
func breakpoints(rng Rand, total, k int) []int {
	interior := total - 1
	complement := k > interior/2
	pick := k
	if complement {
		pick = interior - k
	}

	chosen := make(map[int]struct{}, pick)
	for len(chosen) < pick {
		chosen[1+rng.Intn(interior)] = struct{}{}
	}

	out := make([]int, 0, k+2)
	if complement {
		for v := 1; v <= interior; v++ {
			if _, skip := chosen[v]; !skip {
				out = append(out, v)
			}
		}
		return out
	}
	for v := range chosen {
		out = append(out, v)
	}
	return out
}
