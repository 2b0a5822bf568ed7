package experiment

import (
	"context"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/utils"
)

type individualRepetition struct {
	initial float64
	trials  []Trial
}

// RunIndividualExperiments invokes every method once per repetition, all on
// the repetition's instance. Solver failures fall back to the initial value;
// instance failures and cancellation stop the run and return the completed
// repetitions alongside the error.
func (r *Runner) RunIndividualExperiments(ctx context.Context, cfg models.ProblemConfig, methods []NamedMethod) (*IndividualResults, error) {
	results := newIndividualResults(cfg, methods)
	if err := checkProblem(cfg); err != nil {
		return results, err
	}

	base := utils.NewRandSource(r.opts.Seed)
	r.log.Info("individual experiments started",
		"methods", len(methods), "repetitions", r.opts.Repetitions, "seed", base.Seed())

	reps, err := repeat(ctx, r, "individual", base, 0, r.opts.Repetitions,
		func(ctx context.Context, rep int, rng *utils.RandSource) (individualRepetition, error) {
			inst, err := r.drawer.Draw(ctx, rng, cfg)
			if err != nil {
				return individualRepetition{}, err
			}
			out := individualRepetition{
				initial: inst.InitialValue(),
				trials:  make([]Trial, len(methods)),
			}
			for i, m := range methods {
				out.trials[i] = r.solveOne(ctx, inst, rep, m)
			}
			return out, nil
		})

	for _, rep := range reps {
		results.Series[0].Values = append(results.Series[0].Values, rep.initial)
		for i, t := range rep.trials {
			results.Series[i+1].Values = append(results.Series[i+1].Values, t.Value)
			if t.Fallback {
				results.Fallbacks[methods[i].Name]++
			}
		}
	}
	results.Repetitions = len(reps)

	if err != nil {
		r.log.Warn("individual experiments stopped early", "completed", len(reps), "error", err)
		return results, err
	}
	r.log.Info("individual experiments finished", "repetitions", len(reps))
	return results, nil
}

func newIndividualResults(cfg models.ProblemConfig, methods []NamedMethod) *IndividualResults {
	series := make([]models.MethodSeries, 0, len(methods)+1)
	series = append(series, models.MethodSeries{Name: SeriesInitial, Values: []float64{}})
	for _, m := range methods {
		series = append(series, models.MethodSeries{Name: m.Name, Values: []float64{}})
	}
	return &IndividualResults{
		Problem:   cfg,
		Series:    series,
		Fallbacks: make(map[string]int),
	}
}

// solveOne is a convenience for a single named invocation.
func (r *Runner) solveOne(ctx context.Context, inst *solver.Instance, rep int, m NamedMethod) Trial {
	res, err := r.solver.Solve(ctx, inst, m.Method)
	return r.settle(m.Name, rep, inst.InitialValue(), res, err)
}
