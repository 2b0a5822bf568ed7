package labd

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/instance"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/partition"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver/solvertest"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

var testProblem = models.ProblemConfig{ProblemSize: 12, Capacity: 30, MinItemWeight: 1, MaxItemWeight: 8}

func testExperimentConfig() config.ExperimentConfig {
	cfg := config.Default().Experiment
	cfg.Repetitions = 2
	cfg.Seed = 7
	cfg.GeneticConfigurations = cfg.GeneticConfigurations[:3]
	return cfg
}

// newServiceExecutor wires an executor to a fake solver service.
func newServiceExecutor(t *testing.T, archive Archive) (*Executor, *solvertest.Server) {
	t.Helper()
	srv := solvertest.NewServer()
	t.Cleanup(srv.Close)

	client := solver.NewClient(solver.Options{BaseURL: srv.URL})
	e := NewExecutor(NewStore(archive), instance.NewProvider(client, 0), client, testExperimentConfig())
	e.log = logger.New("error", io.Discard)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})
	return e, srv
}

// blockingDrawer blocks every draw until the run is cancelled.
type blockingDrawer struct {
	once    sync.Once
	started chan struct{}
}

func newBlockingDrawer() *blockingDrawer {
	return &blockingDrawer{started: make(chan struct{})}
}

func (d *blockingDrawer) Draw(ctx context.Context, _ partition.Rand, _ models.ProblemConfig) (*solver.Instance, error) {
	d.once.Do(func() { close(d.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

type unusedSolver struct{}

func (unusedSolver) Solve(context.Context, *solver.Instance, solver.Method) (solver.Result, error) {
	return solver.Result{}, nil
}

func (unusedSolver) SolveAll(context.Context, *solver.Instance, solver.AllMethodsParams) (solver.AllMethodsResult, error) {
	return solver.AllMethodsResult{}, nil
}

func newBlockingExecutor(t *testing.T) (*Executor, *blockingDrawer) {
	t.Helper()
	d := newBlockingDrawer()
	e := NewExecutor(NewStore(nil), d, unusedSolver{}, testExperimentConfig())
	e.log = logger.New("error", io.Discard)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})
	return e, d
}

// waitForTerminal polls until the record is terminal.
func waitForTerminal(t *testing.T, store *Store, id string) Record {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(id)
		if ok && rec.Status.IsTerminal() && rec.Results != nil {
			return rec
		}
		time.Sleep(10 * time.Millisecond)
	}
	rec, _ := store.Get(id)
	t.Fatalf("experiment %s did not finish, status %q", id, rec.Status)
	return Record{}
}

func testContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}
