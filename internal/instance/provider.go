// Package instance draws fresh multi-knapsack instances from the solver
// service, one per repetition.
package instance

import (
	"context"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/partition"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// ErrInstanceGeneration wraps any failure to obtain an instance.
var ErrInstanceGeneration = errors.New("instance generation failed")

// DefaultMaxKnapsacks bounds the random knapsack count.
const DefaultMaxKnapsacks = 10

// Generator is the subset of the solver client the provider needs.
type Generator interface {
	GenerateProblem(ctx context.Context, lengths []int, minWeight, maxWeight int) (models.KnapsackInstance, error)
	InitialSolution(ctx context.Context, problem models.KnapsackInstance, lengths, maxWeights []int) ([][]int, error)
	Evaluate(ctx context.Context, problem models.KnapsackInstance, solutions [][]int) ([]float64, error)
}

// Provider builds instances with a starting solution and its values.
type Provider struct {
	gen          Generator
	maxKnapsacks int
}

// NewProvider creates a provider. maxKnapsacks <= 0 selects DefaultMaxKnapsacks.
func NewProvider(gen Generator, maxKnapsacks int) *Provider {
	if maxKnapsacks <= 0 {
		maxKnapsacks = DefaultMaxKnapsacks
	}
	return &Provider{gen: gen, maxKnapsacks: maxKnapsacks}
}

// KnapsackCount picks how many knapsacks the next instance has: uniform in
// [1, maxKnapsacks], capped so every knapsack gets at least one item and one
// unit of capacity.
func (p *Provider) KnapsackCount(rng partition.Rand, cfg models.ProblemConfig) int {
	n := 1 + rng.Intn(p.maxKnapsacks)
	if n > cfg.ProblemSize {
		n = cfg.ProblemSize
	}
	if n > cfg.Capacity {
		n = cfg.Capacity
	}
	return n
}

// Draw generates an instance, its initial solution and the per-knapsack
// values of that solution. Partition errors are returned unwrapped since no
// remote call has been made yet.
func (p *Provider) Draw(ctx context.Context, rng partition.Rand, cfg models.ProblemConfig) (*solver.Instance, error) {
	n := p.KnapsackCount(rng, cfg)
	lengths, err := partition.Split(rng, cfg.ProblemSize, n)
	if err != nil {
		return nil, fmt.Errorf("split problem size: %w", err)
	}
	maxWeights, err := partition.Split(rng, cfg.Capacity, n)
	if err != nil {
		return nil, fmt.Errorf("split capacity: %w", err)
	}

	problem, err := p.gen.GenerateProblem(ctx, lengths, cfg.MinItemWeight, cfg.MaxItemWeight)
	if err != nil {
		return nil, fmt.Errorf("%w: generate problem: %w", ErrInstanceGeneration, err)
	}
	solutions, err := p.gen.InitialSolution(ctx, problem, lengths, maxWeights)
	if err != nil {
		return nil, fmt.Errorf("%w: initial solution: %w", ErrInstanceGeneration, err)
	}
	values, err := p.gen.Evaluate(ctx, problem, solutions)
	if err != nil {
		return nil, fmt.Errorf("%w: evaluate initial solution: %w", ErrInstanceGeneration, err)
	}
	if len(values) != len(solutions) {
		return nil, fmt.Errorf("%w: %d values for %d knapsacks", ErrInstanceGeneration, len(values), len(solutions))
	}

	return &solver.Instance{
		Problem:    problem,
		Lengths:    lengths,
		MaxWeights: maxWeights,
		Solutions:  solutions,
		Values:     values,
	}, nil
}
