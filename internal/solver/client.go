package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/metrics"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

var (
	// ErrIncompleteResult is returned when a response lacks its value fields.
	ErrIncompleteResult = errors.New("incomplete solver result")
	// ErrCircuitOpen is returned when calls to an endpoint are short-circuited.
	ErrCircuitOpen = errors.New("solver circuit open")
	// ErrUnexpectedStatus is returned for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected solver status")
	// ErrUnknownMethod is returned for a Method the client cannot dispatch.
	ErrUnknownMethod = errors.New("unknown solver method")
)

// DefaultBaseURL is where the solver service listens unless configured otherwise.
const DefaultBaseURL = "http://localhost:5000"

var (
	tracerOnce   sync.Once
	solverTracer trace.Tracer
)

func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		solverTracer = otel.Tracer("knapsack-lab/solver")
	})
	return solverTracer
}

// Options configures a Client
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables limiting
	Burst             int
	Breaker           *CircuitBreaker // nil disables short-circuiting
	HTTPClient        *http.Client
}

// Client calls the remote solver service. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *CircuitBreaker
}

// NewClient creates a solver client
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		limiter: limiter,
		breaker: opts.Breaker,
	}
}

// NewClientFromConfig builds a client from the solver config section
func NewClientFromConfig(cfg config.SolverConfig) (*Client, error) {
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid solver timeout %q: %w", cfg.Timeout, err)
	}
	opts := Options{
		BaseURL:           cfg.BaseURL,
		Timeout:           timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}
	if cb := cfg.CircuitBreaker; cb != nil && cb.Enabled {
		openFor, err := cb.GetTimeout()
		if err != nil {
			return nil, fmt.Errorf("invalid circuit breaker timeout %q: %w", cb.Timeout, err)
		}
		opts.Breaker = NewCircuitBreaker(cb.FailureThreshold, cb.SuccessThreshold, openFor)
	}
	return NewClient(opts), nil
}

// GenerateProblem draws a random instance with the given knapsack lengths
func (c *Client) GenerateProblem(ctx context.Context, lengths []int, minWeight, maxWeight int) (models.KnapsackInstance, error) {
	var resp problemResponse
	err := c.call(ctx, EndpointProblem, problemRequest{
		KnapsacksLength: lengths,
		MinimumWeight:   minWeight,
		MaximumWeight:   maxWeight,
	}, &resp, func() error {
		if resp.Problem == nil {
			return ErrIncompleteResult
		}
		return nil
	})
	if err != nil {
		return models.KnapsackInstance{}, err
	}

	inst := models.KnapsackInstance{Weights: resp.Problem.Weights, Costs: resp.Problem.Costs}
	if err := inst.Validate(); err != nil {
		return models.KnapsackInstance{}, fmt.Errorf("%w: %v", ErrIncompleteResult, err)
	}
	if inst.Knapsacks() != len(lengths) {
		return models.KnapsackInstance{}, fmt.Errorf("%w: requested %d knapsacks, got %d", ErrIncompleteResult, len(lengths), inst.Knapsacks())
	}
	return inst, nil
}

// InitialSolution asks the service for a feasible starting solution
func (c *Client) InitialSolution(ctx context.Context, problem models.KnapsackInstance, lengths, maxWeights []int) ([][]int, error) {
	var resp initialSolutionResponse
	err := c.call(ctx, EndpointInitialSolution, initialSolutionRequest{
		Weights:         problem.Weights,
		KnapsacksLength: lengths,
		MaximumWeights:  maxWeights,
	}, &resp, func() error {
		if resp.Solutions == nil {
			return ErrIncompleteResult
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Solutions, nil
}

// Evaluate returns the per-knapsack value of solutions
func (c *Client) Evaluate(ctx context.Context, problem models.KnapsackInstance, solutions [][]int) ([]float64, error) {
	if len(solutions) != problem.Knapsacks() {
		return nil, fmt.Errorf("%w: %d solutions for %d knapsacks", ErrIncompleteResult, len(solutions), problem.Knapsacks())
	}
	req := evaluateRequest{Knapsacks: make([]evaluateKnapsack, len(solutions))}
	for i, s := range solutions {
		req.Knapsacks[i] = evaluateKnapsack{
			Solution: s,
			Weights:  problem.Weights[i],
			Costs:    problem.Costs[i],
		}
	}

	var resp evaluateResponse
	err := c.call(ctx, EndpointEvaluate, req, &resp, func() error {
		if resp.CurrentValues == nil {
			return ErrIncompleteResult
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp.CurrentValues, nil
}

// Solve invokes method m on inst
func (c *Client) Solve(ctx context.Context, inst *Instance, m Method) (Result, error) {
	ctx, span := getTracer().Start(ctx, "solver.Client.Solve",
		trace.WithAttributes(attribute.String("method", m.Kind())),
	)
	defer span.End()

	result, err := c.solve(ctx, inst, m)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "solve failed")
		return Result{}, err
	}
	span.SetAttributes(attribute.Float64("value", result.Value()))
	return result, nil
}

func (c *Client) solve(ctx context.Context, inst *Instance, m Method) (Result, error) {
	switch m := m.(type) {
	case HillClimb:
		return c.search(ctx, EndpointHillClimb, newSearchRequest(inst))

	case HillClimbWithRetries:
		req := newSearchRequest(inst)
		req.Tmax = m.Attempts
		return c.search(ctx, EndpointHillClimbRetry, req)

	case SimulatedAnnealing:
		req := newSearchRequest(inst)
		req.ReducerFactor = float64Ptr(m.CoolingRate)
		req.InitialTemperature = float64Ptr(m.InitialTemp)
		req.FinalTemperature = float64Ptr(m.FinalTemp)
		return c.search(ctx, EndpointAnnealing, req)

	case GeneticAlgorithm:
		var resp geneticResponse
		var result Result
		err := c.call(ctx, EndpointGenetic, geneticRequest{
			Costs:           inst.Problem.Costs,
			Lengths:         inst.Lengths,
			Weights:         inst.Problem.Weights,
			MaximumWeights:  inst.MaxWeights,
			Generations:     m.Generations,
			MutationRate:    m.MutationRate,
			PopulationSize:  m.PopulationSize,
			CrossOverRate:   m.CrossoverRate,
			KeepIndividuals: m.EliteFraction,
		}, &resp, func() error {
			var err error
			result, err = resp.result()
			return err
		})
		return result, err

	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownMethod, m)
	}
}

func (c *Client) search(ctx context.Context, endpoint string, req searchRequest) (Result, error) {
	var resp searchResponse
	var result Result
	err := c.call(ctx, endpoint, req, &resp, func() error {
		var err error
		result, err = resp.result()
		return err
	})
	return result, err
}

// AllMethodsParams configures the combined endpoint
type AllMethodsParams struct {
	Attempts    int
	InitialTemp float64
	FinalTemp   float64
	CoolingRate float64
}

// Outcome is one branch of a combined call
type Outcome struct {
	Result Result
	Err    error
}

// AllMethodsResult holds the three branches of the combined endpoint
type AllMethodsResult struct {
	HillClimb        Outcome
	HillClimbRetries Outcome
	Annealing        Outcome
}

// SolveAll runs hill climbing, hill climbing with retries and simulated
// annealing in one call. A call-level failure is returned as error; a
// missing branch is reported in that branch's Outcome.
func (c *Client) SolveAll(ctx context.Context, inst *Instance, p AllMethodsParams) (AllMethodsResult, error) {
	ctx, span := getTracer().Start(ctx, "solver.Client.SolveAll")
	defer span.End()

	req := newSearchRequest(inst)
	req.Tmax = p.Attempts
	req.ReducerFactor = float64Ptr(p.CoolingRate)
	req.InitialTemperature = float64Ptr(p.InitialTemp)
	req.FinalTemperature = float64Ptr(p.FinalTemp)

	var resp allMethodsResponse
	if err := c.call(ctx, EndpointAllMethods, req, &resp, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "solve all failed")
		return AllMethodsResult{}, err
	}

	var out AllMethodsResult
	out.HillClimb.Result, out.HillClimb.Err = resp.SlopeClimbing.result()
	out.HillClimbRetries.Result, out.HillClimbRetries.Err = resp.SlopeClimbingTry.result()
	out.Annealing.Result, out.Annealing.Err = resp.Temperature.result()
	return out, nil
}

// call POSTs in as JSON to endpoint and decodes the response into out.
// complete, if set, checks the decoded response for missing fields.
func (c *Client) call(ctx context.Context, endpoint string, in, out any, complete func() error) (err error) {
	start := time.Now()
	result := "success"
	defer func() {
		metrics.RecordSolverCall(endpoint, result, time.Since(start))
	}()

	if c.breaker != nil && !c.breaker.Allow(endpoint) {
		result = "circuit_open"
		return fmt.Errorf("%w: %s", ErrCircuitOpen, endpoint)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			result = "canceled"
			return fmt.Errorf("rate limit wait for %s: %w", endpoint, err)
		}
	}

	ctx, span := getTracer().Start(ctx, "solver.Client.call",
		trace.WithAttributes(attribute.String("endpoint", endpoint)),
	)
	defer span.End()

	defer func() {
		if err == nil {
			if c.breaker != nil {
				c.breaker.RecordSuccess(endpoint)
			}
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		if c.breaker != nil && result != "canceled" && result != "incomplete" {
			c.breaker.RecordFailure(endpoint)
		}
	}()

	body, err := json.Marshal(in)
	if err != nil {
		result = "transport_error"
		return fmt.Errorf("encode %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		result = "transport_error"
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		result = "transport_error"
		if ctx.Err() != nil {
			result = "canceled"
		}
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result = "http_error"
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrUnexpectedStatus, endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		result = "incomplete"
		return fmt.Errorf("%w: decode %s response: %v", ErrIncompleteResult, endpoint, err)
	}
	if complete != nil {
		if err := complete(); err != nil {
			result = "incomplete"
			return fmt.Errorf("%s: %w", endpoint, err)
		}
	}
	return nil
}
