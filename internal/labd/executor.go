package labd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/experiment"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/metrics"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/report"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/utils"
)

// ErrInvalidRequest wraps every rejected experiment request.
var ErrInvalidRequest = errors.New("invalid experiment request")

// Request describes an experiment to start. Zero Repetitions and Seed take
// the configured defaults.
type Request struct {
	ID          string                `json:"id,omitempty"`
	Kind        models.ExperimentKind `json:"kind"`
	Problem     models.ProblemConfig  `json:"problem"`
	Repetitions int                   `json:"repetitions,omitempty"`
	Seed        int64                 `json:"seed,omitempty"`
	CallbackURL string                `json:"callback_url,omitempty"`
}

// Executor runs experiments asynchronously with per-run cancellation.
type Executor struct {
	store    *Store
	drawer   experiment.Drawer
	solver   experiment.Solver
	cfg      config.ExperimentConfig
	notifier *Notifier
	log      *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewExecutor(store *Store, drawer experiment.Drawer, s experiment.Solver, cfg config.ExperimentConfig) *Executor {
	return &Executor{
		store:    store,
		drawer:   drawer,
		solver:   s,
		cfg:      cfg,
		notifier: NewNotifier(),
		log:      logger.Default,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Store returns the executor's record store.
func (e *Executor) Store() *Store {
	return e.store
}

func (e *Executor) validate(req Request) error {
	if _, err := models.ParseExperimentKind(string(req.Kind)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := config.ValidateProblem(req.Problem); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.Repetitions < 0 {
		return fmt.Errorf("%w: repetitions must not be negative, got %d", ErrInvalidRequest, req.Repetitions)
	}
	if req.Kind == models.ExperimentKindGenetic && len(e.cfg.GeneticConfigurations) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, experiment.ErrNoConfigurations)
	}
	return nil
}

// Start creates a record for req and begins executing it.
func (e *Executor) Start(req Request) (Record, error) {
	if err := e.validate(req); err != nil {
		return Record{}, err
	}
	reps := req.Repetitions
	if reps == 0 {
		reps = e.cfg.Repetitions
	}
	seed := req.Seed
	if seed == 0 {
		seed = e.cfg.Seed
	}
	// A zero seed becomes a time-based one; the record keeps the effective value.
	seed = utils.NewRandSource(seed).Seed()

	rec, err := e.store.Create(Record{
		ID:          req.ID,
		Kind:        req.Kind,
		Problem:     req.Problem,
		Repetitions: reps,
		Seed:        seed,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return Record{}, err
	}
	rec, err = e.store.SetStatus(rec.ID, models.ExperimentStatusRunning, "")
	if err != nil {
		return Record{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	e.cancels[rec.ID] = cancel
	e.mu.Unlock()

	metrics.ExperimentStarted(string(rec.Kind))
	e.wg.Add(1)
	go e.run(ctx, rec)
	return rec, nil
}

// Stop cancels a running experiment and marks it cancelled. Repetitions
// already finished are kept as partial results.
func (e *Executor) Stop(id string) (Record, error) {
	if id == "" {
		return Record{}, ErrRunIDMissing
	}
	if _, ok := e.store.Get(id); !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	updated, err := e.store.SetStatus(id, models.ExperimentStatusCancelled, "")
	if err != nil {
		return Record{}, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[id]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return updated, nil
}

// Shutdown cancels every running experiment and waits for them to record
// their partial results, or for ctx to end.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	for _, cancel := range e.cancels {
		cancel()
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) cleanup(id string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[id]; ok {
		cancel()
		delete(e.cancels, id)
	}
	e.mu.Unlock()
}

func (e *Executor) run(ctx context.Context, rec Record) {
	defer e.wg.Done()
	defer e.cleanup(rec.ID)

	log := e.log.With("experiment_id", rec.ID, "kind", rec.Kind)
	runner := experiment.NewRunner(e.drawer, e.solver, experiment.Options{
		Repetitions: rec.Repetitions,
		Concurrency: e.cfg.Concurrency,
		Seed:        rec.Seed,
		Logger:      log,
	})

	log.Info("experiment started", "repetitions", rec.Repetitions)
	res, err := e.execute(ctx, runner, rec)
	if setErr := e.store.SetResults(rec.ID, res); setErr != nil {
		log.Error("failed to store results", "error", setErr)
	}

	status := models.ExperimentStatusCompleted
	errMsg := ""
	switch {
	case ctx.Err() != nil:
		status = models.ExperimentStatusCancelled
		log.Info("experiment cancelled")
	case err != nil:
		status = models.ExperimentStatusFailed
		errMsg = err.Error()
		log.Error("experiment failed", "error", err)
	default:
		log.Info("experiment completed")
	}

	if _, setErr := e.store.SetStatus(rec.ID, status, errMsg); setErr != nil && !errors.Is(setErr, ErrRunTerminal) {
		log.Error("failed to set final status", "error", setErr)
	}
	final, _ := e.store.Get(rec.ID)
	metrics.ExperimentFinished(string(rec.Kind), string(final.Status))
	e.notifier.Notify(final)
}

func (e *Executor) execute(ctx context.Context, runner *experiment.Runner, rec Record) (Results, error) {
	var (
		res Results
		err error
	)
	switch rec.Kind {
	case models.ExperimentKindIndividual:
		methods := experiment.DefaultMethods(rec.Problem.ProblemSize, e.cfg.AnnealingSchedules)
		res.Individual, err = runner.RunIndividualExperiments(ctx, rec.Problem, methods)
	case models.ExperimentKindAllMethods:
		res.AllMethods, err = runner.RunAllMethodsExperiment(ctx, rec.Problem)
	case models.ExperimentKindGenetic:
		res.Genetic, err = runner.RunGeneticAlgorithmSweep(ctx, rec.Problem, e.cfg.GeneticConfigurations)
	default:
		err = fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, rec.Kind)
	}
	return res, err
}

// reportInput adapts stored results to the report serializer.
func reportInput(problem models.ProblemConfig, reps int, res Results) report.Input {
	return report.Input{
		Problem:     problem,
		Repetitions: reps,
		Individual:  res.Individual,
		AllMethods:  res.AllMethods,
		Genetic:     res.Genetic,
	}
}
