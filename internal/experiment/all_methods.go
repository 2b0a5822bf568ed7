package experiment

import (
	"context"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/utils"
)

var allMethodsSeries = []string{SeriesHillClimb, SeriesHillClimbN, SeriesHillClimb2N, SeriesAnnealing}

type allMethodsRepetition struct {
	initial float64
	trials  [4]Trial
	rows    []MethodTrial
}

// RunAllMethodsExperiment calls the combined endpoint once per repetition
// (hill climbing, N-attempt hill climbing and annealing) plus one 2N-attempt
// hill climbing call, with the same fallback policy as the individual runs.
func (r *Runner) RunAllMethodsExperiment(ctx context.Context, cfg models.ProblemConfig) (*AllMethodsResults, error) {
	results := &AllMethodsResults{
		Problem:   cfg,
		Series:    make([]models.MethodSeries, 0, len(allMethodsSeries)+1),
		Fallbacks: make(map[string]int),
		Trials:    []MethodTrial{},
	}
	results.Series = append(results.Series, models.MethodSeries{Name: SeriesInitial, Values: []float64{}})
	for _, name := range allMethodsSeries {
		results.Series = append(results.Series, models.MethodSeries{Name: name, Values: []float64{}})
	}
	if err := checkProblem(cfg); err != nil {
		return results, err
	}

	params := AllMethodsParams(cfg.ProblemSize)
	base := utils.NewRandSource(r.opts.Seed)
	r.log.Info("all-methods experiment started", "repetitions", r.opts.Repetitions, "seed", base.Seed())

	reps, err := repeat(ctx, r, "all_methods", base, 0, r.opts.Repetitions,
		func(ctx context.Context, rep int, rng *utils.RandSource) (allMethodsRepetition, error) {
			inst, err := r.drawer.Draw(ctx, rng, cfg)
			if err != nil {
				return allMethodsRepetition{}, err
			}
			out := allMethodsRepetition{initial: inst.InitialValue()}

			all, err := r.solver.SolveAll(ctx, inst, params)
			outcomes := []solver.Outcome{all.HillClimb, all.HillClimbRetries, all.Annealing}
			if err != nil {
				for i := range outcomes {
					outcomes[i] = solver.Outcome{Err: err}
				}
			}
			res2N, err2N := r.solver.Solve(ctx, inst, solver.HillClimbWithRetries{Attempts: 2 * cfg.ProblemSize})
			// Series order is HC, HC N, HC 2N, annealing.
			ordered := []solver.Outcome{outcomes[0], outcomes[1], {Result: res2N, Err: err2N}, outcomes[2]}

			for i, o := range ordered {
				name := allMethodsSeries[i]
				out.trials[i] = r.settle(name, rep, out.initial, o.Result, o.Err)
				if o.Err == nil {
					out.rows = append(out.rows, MethodTrial{
						Method:           name,
						Repetition:       rep,
						InitialValues:    inst.Values,
						FinalValues:      o.Result.Values,
						InitialSolutions: inst.Solutions,
						FinalSolutions:   o.Result.Solutions,
						Weights:          inst.Problem.Weights,
						Costs:            inst.Problem.Costs,
					})
				}
			}
			return out, nil
		})

	for _, rep := range reps {
		results.Series[0].Values = append(results.Series[0].Values, rep.initial)
		for i, t := range rep.trials {
			results.Series[i+1].Values = append(results.Series[i+1].Values, t.Value)
			if t.Fallback {
				results.Fallbacks[allMethodsSeries[i]]++
			}
		}
		results.Trials = append(results.Trials, rep.rows...)
	}
	results.Repetitions = len(reps)

	if err != nil {
		r.log.Warn("all-methods experiment stopped early", "completed", len(reps), "error", err)
		return results, err
	}
	r.log.Info("all-methods experiment finished", "repetitions", len(reps))
	return results, nil
}
