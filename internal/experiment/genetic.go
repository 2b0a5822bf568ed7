package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/analysis"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/stats"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/utils"
)

type geneticRepetition struct {
	initial float64
	trial   Trial
	elapsed time.Duration
}

// GAConfigName is the display name of the i-th (0-based) configuration.
func GAConfigName(i int) string {
	return fmt.Sprintf("GA_Config_%d", i+1)
}

// RunGeneticAlgorithmSweep runs every configuration, in order, for the
// configured number of repetitions. The best configuration is the one with
// the highest mean outcome; ties keep the earlier configuration.
func (r *Runner) RunGeneticAlgorithmSweep(ctx context.Context, cfg models.ProblemConfig, gaConfigs []models.GAConfiguration) (*GAReportData, error) {
	report := &GAReportData{
		Problem:     cfg,
		Repetitions: r.opts.Repetitions,
		Experiments: []models.GAExperimentResult{},
	}
	if len(gaConfigs) == 0 {
		return report, ErrNoConfigurations
	}
	if err := checkProblem(cfg); err != nil {
		return report, err
	}

	base := utils.NewRandSource(r.opts.Seed)
	r.log.Info("genetic algorithm sweep started",
		"configurations", len(gaConfigs), "repetitions", r.opts.Repetitions, "seed", base.Seed())

	var runErr error
	trials := 0
	for ci, gaCfg := range gaConfigs {
		m := NamedMethod{Name: GAConfigName(ci), Method: solver.GeneticAlgorithm{GAConfiguration: gaCfg}}

		reps, err := repeat(ctx, r, "genetic", base, ci*r.opts.Repetitions, r.opts.Repetitions,
			func(ctx context.Context, rep int, rng *utils.RandSource) (geneticRepetition, error) {
				inst, err := r.drawer.Draw(ctx, rng, cfg)
				if err != nil {
					return geneticRepetition{}, err
				}
				start := time.Now()
				trial := r.solveOne(ctx, inst, rep, m)
				return geneticRepetition{
					initial: inst.InitialValue(),
					trial:   trial,
					elapsed: time.Since(start),
				}, nil
			})

		if len(reps) > 0 {
			report.Experiments = append(report.Experiments, geneticResult(gaCfg, reps))
			trials += len(reps)
		}
		if err != nil {
			runErr = fmt.Errorf("configuration %d: %w", ci+1, err)
			break
		}
	}

	summarizeSweep(report, trials)
	report.Comparison = analysis.CompareAll(report.Experiments)

	if runErr != nil {
		r.log.Warn("genetic algorithm sweep stopped early",
			"configurations_completed", len(report.Experiments), "error", runErr)
		return report, runErr
	}
	r.log.Info("genetic algorithm sweep finished",
		"best_population", report.BestConfiguration.PopulationSize,
		"best_generations", report.BestConfiguration.Generations,
		"best_value", report.Summary.BestOverallValue)
	return report, nil
}

func geneticResult(cfg models.GAConfiguration, reps []geneticRepetition) models.GAExperimentResult {
	res := models.GAExperimentResult{
		Config:       cfg,
		Outcomes:     make([]float64, len(reps)),
		Improvements: make([]float64, len(reps)),
	}
	for i, rep := range reps {
		res.Outcomes[i] = rep.trial.Value
		// A fallback value equals the initial value, so its improvement is 0.
		res.Improvements[i] = rep.trial.Value - rep.initial
		res.ExecutionTime += rep.elapsed
	}
	res.Stats = stats.Compute(res.Outcomes)
	return res
}

// summarizeSweep fills the best configuration and summary. trials is the
// number of GA invocations that contributed to the experiments.
func summarizeSweep(report *GAReportData, trials int) {
	if len(report.Experiments) == 0 {
		return
	}

	best := 0
	var totalImprovement float64
	var totalTime time.Duration
	for i, e := range report.Experiments {
		if stats.Compute(e.Outcomes).Mean > stats.Compute(report.Experiments[best].Outcomes).Mean {
			best = i
		}
		totalImprovement += utils.Mean(e.Improvements)
		totalTime += e.ExecutionTime
	}

	report.BestConfiguration = report.Experiments[best].Config
	report.Summary = GASummary{
		TotalExperiments:   len(report.Experiments),
		BestOverallValue:   stats.Compute(report.Experiments[best].Outcomes).Mean,
		AverageImprovement: totalImprovement / float64(len(report.Experiments)),
		TotalExecutionTime: totalTime,
	}
	if trials > 0 {
		report.Summary.AverageExecutionTime = totalTime / time.Duration(trials)
	}
}
