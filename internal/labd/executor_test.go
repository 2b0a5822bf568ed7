package labd

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/experiment"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

func TestExecutorRunsEachKind(t *testing.T) {
	tests := []struct {
		kind  models.ExperimentKind
		check func(t *testing.T, res *Results)
	}{
		{models.ExperimentKindIndividual, func(t *testing.T, res *Results) {
			if res.Individual == nil || len(res.Individual.Series) != 13 {
				t.Fatalf("expected 13 individual series, got %+v", res.Individual)
			}
		}},
		{models.ExperimentKindAllMethods, func(t *testing.T, res *Results) {
			if res.AllMethods == nil || len(res.AllMethods.Series) != 5 {
				t.Fatalf("expected 5 all-methods series, got %+v", res.AllMethods)
			}
		}},
		{models.ExperimentKindGenetic, func(t *testing.T, res *Results) {
			if res.Genetic == nil || len(res.Genetic.Experiments) != 3 {
				t.Fatalf("expected 3 GA experiments, got %+v", res.Genetic)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e, _ := newServiceExecutor(t, nil)
			rec, err := e.Start(Request{Kind: tt.kind, Problem: testProblem})
			if err != nil {
				t.Fatalf("Start error: %v", err)
			}
			if rec.Status != models.ExperimentStatusRunning {
				t.Fatalf("expected running, got %s", rec.Status)
			}
			if rec.Repetitions != 2 || rec.Seed != 7 {
				t.Fatalf("expected configured defaults, got reps=%d seed=%d", rec.Repetitions, rec.Seed)
			}

			done := waitForTerminal(t, e.Store(), rec.ID)
			if done.Status != models.ExperimentStatusCompleted {
				t.Fatalf("expected completed, got %s (%s)", done.Status, done.Error)
			}
			tt.check(t, done.Results)
		})
	}
}

func TestExecutorRequestOverrides(t *testing.T) {
	e, _ := newServiceExecutor(t, nil)
	rec, err := e.Start(Request{ID: "custom", Kind: models.ExperimentKindAllMethods, Problem: testProblem, Repetitions: 3, Seed: 99})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if rec.ID != "custom" || rec.Repetitions != 3 || rec.Seed != 99 {
		t.Fatalf("expected overrides, got %+v", rec)
	}
	done := waitForTerminal(t, e.Store(), rec.ID)
	if done.Results.AllMethods.Repetitions != 3 {
		t.Fatalf("expected 3 repetitions, got %d", done.Results.AllMethods.Repetitions)
	}

	if _, err := e.Start(Request{ID: "custom", Kind: models.ExperimentKindAllMethods, Problem: testProblem}); !errors.Is(err, ErrRunExists) {
		t.Fatalf("expected ErrRunExists, got %v", err)
	}
}

func TestExecutorRecordsEffectiveSeed(t *testing.T) {
	e, _ := newServiceExecutor(t, nil)
	e.cfg.Seed = 0

	first, err := e.Start(Request{Kind: models.ExperimentKindIndividual, Problem: testProblem})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if first.Seed == 0 {
		t.Fatalf("expected a resolved seed on the record, got 0")
	}
	replay, err := e.Start(Request{Kind: models.ExperimentKindIndividual, Problem: testProblem, Seed: first.Seed})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	a := waitForTerminal(t, e.Store(), first.ID)
	b := waitForTerminal(t, e.Store(), replay.ID)
	if !reflect.DeepEqual(a.Results.Individual.Series, b.Results.Individual.Series) {
		t.Fatalf("expected replay with seed %d to reproduce the run", first.Seed)
	}
}

func TestExecutorRejectsInvalidRequests(t *testing.T) {
	e, _ := newBlockingExecutor(t)
	tests := []struct {
		name string
		req  Request
	}{
		{"unknown kind", Request{Kind: "tabu", Problem: testProblem}},
		{"zero problem size", Request{Kind: models.ExperimentKindIndividual, Problem: models.ProblemConfig{Capacity: 3, MinItemWeight: 1, MaxItemWeight: 2}}},
		{"inverted weights", Request{Kind: models.ExperimentKindIndividual, Problem: models.ProblemConfig{ProblemSize: 5, Capacity: 3, MinItemWeight: 4, MaxItemWeight: 2}}},
		{"negative repetitions", Request{Kind: models.ExperimentKindIndividual, Problem: testProblem, Repetitions: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Start(tt.req); !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
	if got := e.Store().List(10, 0, ""); len(got) != 0 {
		t.Fatalf("expected no records for rejected requests, got %d", len(got))
	}
}

func TestExecutorGeneticWithoutConfigurations(t *testing.T) {
	e, _ := newBlockingExecutor(t)
	e.cfg.GeneticConfigurations = nil
	_, err := e.Start(Request{Kind: models.ExperimentKindGenetic, Problem: testProblem})
	if !errors.Is(err, ErrInvalidRequest) || !errors.Is(err, experiment.ErrNoConfigurations) {
		t.Fatalf("expected ErrNoConfigurations, got %v", err)
	}
}

func TestExecutorStop(t *testing.T) {
	e, drawer := newBlockingExecutor(t)
	rec, err := e.Start(Request{Kind: models.ExperimentKindIndividual, Problem: testProblem})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}

	select {
	case <-drawer.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("experiment never drew an instance")
	}

	stopped, err := e.Stop(rec.ID)
	if err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if stopped.Status != models.ExperimentStatusCancelled {
		t.Fatalf("expected cancelled, got %s", stopped.Status)
	}

	done := waitForTerminal(t, e.Store(), rec.ID)
	if done.Status != models.ExperimentStatusCancelled {
		t.Fatalf("expected cancelled to stick, got %s", done.Status)
	}
	if done.Results.Individual == nil || done.Results.Individual.Repetitions != 0 {
		t.Fatalf("expected empty partial results, got %+v", done.Results.Individual)
	}

	if _, err := e.Stop(rec.ID); !errors.Is(err, ErrRunTerminal) {
		t.Fatalf("expected ErrRunTerminal on second stop, got %v", err)
	}
	if _, err := e.Stop("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := e.Stop(""); !errors.Is(err, ErrRunIDMissing) {
		t.Fatalf("expected ErrRunIDMissing, got %v", err)
	}
}

func TestExecutorShutdownCancelsRunning(t *testing.T) {
	e, drawer := newBlockingExecutor(t)
	rec, err := e.Start(Request{Kind: models.ExperimentKindAllMethods, Problem: testProblem})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	<-drawer.started

	ctx, cancel := testContext(t)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}
	got, _ := e.Store().Get(rec.ID)
	if got.Status != models.ExperimentStatusCancelled {
		t.Fatalf("expected cancelled after shutdown, got %s", got.Status)
	}
}

func TestExecutorSolverFailureCompletesWithFallbacks(t *testing.T) {
	e, srv := newServiceExecutor(t, nil)
	srv.Fail(solver.EndpointAllMethods)
	srv.Fail(solver.EndpointHillClimbRetry)

	rec, err := e.Start(Request{Kind: models.ExperimentKindAllMethods, Problem: testProblem})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	done := waitForTerminal(t, e.Store(), rec.ID)
	if done.Status != models.ExperimentStatusCompleted {
		t.Fatalf("expected completed, got %s", done.Status)
	}
	if got := done.Results.AllMethods.Fallbacks[experiment.SeriesAnnealing]; got != 2 {
		t.Fatalf("expected 2 annealing fallbacks, got %d", got)
	}
}

func TestExecutorInstanceFailureFails(t *testing.T) {
	e, srv := newServiceExecutor(t, nil)
	srv.Fail(solver.EndpointProblem)

	rec, err := e.Start(Request{Kind: models.ExperimentKindIndividual, Problem: testProblem})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	done := waitForTerminal(t, e.Store(), rec.ID)
	if done.Status != models.ExperimentStatusFailed || done.Error == "" {
		t.Fatalf("expected failed with error, got %s %q", done.Status, done.Error)
	}
}
