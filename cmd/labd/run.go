package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/experiment"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/instance"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/report"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/telemetry"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

type runOptions struct {
	problem     models.ProblemConfig
	repetitions int
	concurrency int
	seed        int64
	solverURL   string
	format      string
	out         string
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one experiment against the solver service and write its report",
	}
	f := cmd.PersistentFlags()
	f.IntVar(&opts.problem.ProblemSize, "problem-size", 20, "total number of items across all knapsacks")
	f.IntVar(&opts.problem.Capacity, "capacity", 60, "total capacity across all knapsacks")
	f.IntVar(&opts.problem.MinItemWeight, "min-weight", 1, "minimum item weight")
	f.IntVar(&opts.problem.MaxItemWeight, "max-weight", 10, "maximum item weight")
	f.IntVar(&opts.repetitions, "repetitions", 0, "repetitions per method (0 uses the config value)")
	f.IntVar(&opts.concurrency, "concurrency", 0, "repetitions run in parallel (0 uses the config value)")
	f.Int64Var(&opts.seed, "seed", 0, "random seed (0 uses the config value; a zero config seed is time based)")
	f.StringVar(&opts.solverURL, "solver-url", "", "solver service base URL override")
	f.StringVar(&opts.format, "format", "json", "report format (json or csv)")
	f.StringVarP(&opts.out, "out", "o", "", "report file (stdout when empty)")

	for _, kind := range []struct {
		use   string
		kind  models.ExperimentKind
		short string
	}{
		{"individual", models.ExperimentKindIndividual, "Run every method separately on each instance"},
		{"all", models.ExperimentKindAllMethods, "Run the combined all-methods experiment"},
		{"genetic", models.ExperimentKindGenetic, "Sweep the genetic algorithm configurations"},
	} {
		kind := kind
		cmd.AddCommand(&cobra.Command{
			Use:   kind.use,
			Short: kind.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runExperiment(cmd, kind.kind, opts)
			},
		})
	}
	return cmd
}

func runExperiment(cmd *cobra.Command, kind models.ExperimentKind, opts *runOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.NewAuto(cfg.LogLevel, os.Stderr))

	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if err := config.ValidateProblem(opts.problem); err != nil {
		return err
	}
	applyRunOverrides(cfg, opts)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.Telemetry, report.Version))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	client, err := solver.NewClientFromConfig(cfg.Solver)
	if err != nil {
		return fmt.Errorf("solver client: %w", err)
	}
	runner := experiment.NewRunner(instance.NewProvider(client, cfg.Experiment.MaxKnapsacks), client, experiment.Options{
		Repetitions: cfg.Experiment.Repetitions,
		Concurrency: cfg.Experiment.Concurrency,
		Seed:        cfg.Experiment.Seed,
		Logger:      logger.Default,
	})

	in := report.Input{Problem: opts.problem, Repetitions: cfg.Experiment.Repetitions}
	var runErr error
	switch kind {
	case models.ExperimentKindIndividual:
		methods := experiment.DefaultMethods(opts.problem.ProblemSize, cfg.Experiment.AnnealingSchedules)
		in.Individual, runErr = runner.RunIndividualExperiments(ctx, opts.problem, methods)
	case models.ExperimentKindAllMethods:
		in.AllMethods, runErr = runner.RunAllMethodsExperiment(ctx, opts.problem)
	case models.ExperimentKindGenetic:
		in.Genetic, runErr = runner.RunGeneticAlgorithmSweep(ctx, opts.problem, cfg.Experiment.GeneticConfigurations)
	}

	// Partial results are still written when the run stops early.
	if err := writeReport(cmd.OutOrStdout(), opts.out, format, in); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("%s experiment: %w", kind, runErr)
	}
	return nil
}

func applyRunOverrides(cfg *config.Config, opts *runOptions) {
	if opts.repetitions > 0 {
		cfg.Experiment.Repetitions = opts.repetitions
	}
	if opts.concurrency > 0 {
		cfg.Experiment.Concurrency = opts.concurrency
	}
	if opts.seed != 0 {
		cfg.Experiment.Seed = opts.seed
	}
	if opts.solverURL != "" {
		cfg.Solver.BaseURL = opts.solverURL
	}
}

func writeReport(stdout io.Writer, path string, format report.Format, in report.Input) error {
	if path == "" {
		return report.Write(stdout, format, in, time.Now())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := report.Write(f, format, in, time.Now()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	logger.Info("report written", "path", path, "format", format)
	return nil
}
