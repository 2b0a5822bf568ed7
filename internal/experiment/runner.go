// Package experiment drives repeated solver trials against freshly drawn
// instances and accumulates the outcomes into series.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/metrics"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/partition"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/utils"
)

// DefaultRepetitions is the number of repetitions per method or configuration.
const DefaultRepetitions = 20

var (
	// ErrInvalidProblem is returned for item weight bounds the service cannot honour.
	ErrInvalidProblem = errors.New("invalid problem config")
	// ErrNoConfigurations is returned when a sweep is started without configurations.
	ErrNoConfigurations = errors.New("no genetic algorithm configurations")
)

var (
	tracerOnce       sync.Once
	experimentTracer trace.Tracer
)

func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		experimentTracer = otel.Tracer("knapsack-lab/experiment")
	})
	return experimentTracer
}

// Drawer supplies one instance per repetition.
type Drawer interface {
	Draw(ctx context.Context, rng partition.Rand, cfg models.ProblemConfig) (*solver.Instance, error)
}

// Solver invokes methods on an instance.
type Solver interface {
	Solve(ctx context.Context, inst *solver.Instance, m solver.Method) (solver.Result, error)
	SolveAll(ctx context.Context, inst *solver.Instance, p solver.AllMethodsParams) (solver.AllMethodsResult, error)
}

// Options configures a Runner
type Options struct {
	Repetitions int
	// Concurrency is the number of repetitions executed at once; 1 is sequential.
	Concurrency int
	// Seed makes instance draws reproducible; 0 means time based.
	Seed   int64
	Logger *slog.Logger
}

// Runner executes experiments. A Runner holds no per-run state and may run
// several experiments at once.
type Runner struct {
	drawer Drawer
	solver Solver
	opts   Options
	log    *slog.Logger
}

// NewRunner creates a runner
func NewRunner(drawer Drawer, s Solver, opts Options) *Runner {
	if opts.Repetitions <= 0 {
		opts.Repetitions = DefaultRepetitions
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default
	}
	return &Runner{drawer: drawer, solver: s, opts: opts, log: log}
}

// Repetitions returns the configured repetition count
func (r *Runner) Repetitions() int {
	return r.opts.Repetitions
}

// Trial is the outcome of one method invocation. On failure Value holds the
// repetition's initial value and Fallback is set.
type Trial struct {
	Value    float64
	Err      error
	Fallback bool
}

// settle turns a solver response into a Trial, falling back to initial on error.
func (r *Runner) settle(name string, rep int, initial float64, res solver.Result, err error) Trial {
	if err != nil {
		r.log.Warn("solver invocation failed, using initial value",
			"method", name, "repetition", rep, "error", err)
		metrics.RecordTrial(name, true)
		return Trial{Value: initial, Err: err, Fallback: true}
	}
	metrics.RecordTrial(name, false)
	return Trial{Value: res.Value()}
}

func checkProblem(cfg models.ProblemConfig) error {
	if cfg.MinItemWeight < 1 || cfg.MaxItemWeight < cfg.MinItemWeight {
		return fmt.Errorf("%w: item weights must satisfy 1 <= min (%d) <= max (%d)",
			ErrInvalidProblem, cfg.MinItemWeight, cfg.MaxItemWeight)
	}
	return nil
}

// repeat runs fn for n repetitions. On cancellation or failure it returns
// the longest prefix of finished repetitions.
// Stream i of the run's random source is reserved for repetition offset+i.
func repeat[T any](ctx context.Context, r *Runner, kind string, base *utils.RandSource, offset, n int,
	fn func(ctx context.Context, rep int, rng *utils.RandSource) (T, error)) ([]T, error) {

	one := func(ctx context.Context, rep int) (T, error) {
		ctx, span := getTracer().Start(ctx, "experiment.repetition",
			trace.WithAttributes(
				attribute.String("kind", kind),
				attribute.Int("repetition", rep),
			),
		)
		defer span.End()

		start := time.Now()
		v, err := fn(ctx, rep, base.Derive(offset+rep))
		if err == nil && ctx.Err() != nil {
			// Trials cut short by cancellation fell back; the repetition does not count.
			err = ctx.Err()
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repetition failed")
			var zero T
			return zero, err
		}
		metrics.RecordRepetition(kind, time.Since(start))
		return v, nil
	}

	slots := make([]T, n)
	done := make([]bool, n)

	var err error
	if r.opts.Concurrency <= 1 {
		for rep := 0; rep < n; rep++ {
			if err = ctx.Err(); err != nil {
				break
			}
			v, repErr := one(ctx, rep)
			if repErr != nil {
				err = repErr
				break
			}
			slots[rep], done[rep] = v, true
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Concurrency)
		for rep := 0; rep < n; rep++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := one(gctx, rep)
				if err != nil {
					return err
				}
				slots[rep], done[rep] = v, true
				return nil
			})
		}
		err = g.Wait()
	}

	// Only the leading run of finished repetitions is kept, so position i
	// is always repetition i.
	out := make([]T, 0, n)
	for i, ok := range done {
		if !ok {
			break
		}
		out = append(out, slots[i])
	}
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return out, fmt.Errorf("%s experiment stopped after %d of %d repetitions: %w", kind, len(out), n, err)
	}
	return out, nil
}
