// Package solvertest provides an in-process fake of the remote solver service.
package solvertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
)

// Server is a deterministic fake solver.
//
// Instances: knapsack i with n items has weights min, min+1, ... cycling up to
// max, and costs twice the weights. The initial solution takes the first item
// of every knapsack, so the initial per-knapsack value is 2*min.
//
// Methods add a fixed amount to every per-knapsack value: hill climbing +1,
// retries +Tmax, annealing +initial_temperature/100. The genetic algorithm
// reports population_size/10 + generations/100 per knapsack.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
	omit  map[string]bool
}

// NewServer starts a fake solver. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		calls: make(map[string]int),
		fail:  make(map[string]bool),
		omit:  make(map[string]bool),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(solver.EndpointProblem, s.handle(solver.EndpointProblem, s.problem))
	mux.HandleFunc(solver.EndpointInitialSolution, s.handle(solver.EndpointInitialSolution, s.initialSolution))
	mux.HandleFunc(solver.EndpointEvaluate, s.handle(solver.EndpointEvaluate, s.evaluate))
	mux.HandleFunc(solver.EndpointHillClimb, s.handle(solver.EndpointHillClimb, s.search))
	mux.HandleFunc(solver.EndpointHillClimbRetry, s.handle(solver.EndpointHillClimbRetry, s.search))
	mux.HandleFunc(solver.EndpointAnnealing, s.handle(solver.EndpointAnnealing, s.search))
	mux.HandleFunc(solver.EndpointAllMethods, s.handle(solver.EndpointAllMethods, s.all))
	mux.HandleFunc(solver.EndpointGenetic, s.handle(solver.EndpointGenetic, s.genetic))
	s.Server = httptest.NewServer(mux)
	return s
}

// Fail makes endpoint respond with 500.
func (s *Server) Fail(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[endpoint] = true
}

// Omit makes endpoint respond 200 without its value fields.
func (s *Server) Omit(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omit[endpoint] = true
}

// Calls returns how many requests endpoint received.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

func (s *Server) omitted(endpoint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.omit[endpoint]
}

type request struct {
	KnapsacksLength    []int       `json:"knapsacks_length"`
	MinimumWeight      int         `json:"minimum_weight"`
	MaximumWeight      int         `json:"maximum_weight"`
	Weights            [][]float64 `json:"weights"`
	Costs              [][]float64 `json:"costs"`
	MaximumWeights     []int       `json:"maximum_weights"`
	Solutions          [][]int     `json:"solutions"`
	CurrentValues      []float64   `json:"current_values"`
	Tmax               int         `json:"Tmax"`
	InitialTemperature float64     `json:"initial_temperature"`
	Knapsacks          []struct {
		Solution []int     `json:"solution"`
		Weights  []float64 `json:"weights"`
		Costs    []float64 `json:"costs"`
	} `json:"knapsacks"`
	Lengths        []int `json:"lengths"`
	PopulationSize int   `json:"population_size"`
	Generations    int   `json:"generations"`
}

func (s *Server) handle(endpoint string, fn func(endpoint string, req request) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[endpoint]++
		failing := s.fail[endpoint]
		s.mu.Unlock()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if failing {
			http.Error(w, "solver exploded", http.StatusInternalServerError)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fn(endpoint, req))
	}
}

func (s *Server) problem(endpoint string, req request) any {
	if s.omitted(endpoint) {
		return map[string]any{}
	}
	span := req.MaximumWeight - req.MinimumWeight + 1
	if span < 1 {
		span = 1
	}
	weights := make([][]float64, len(req.KnapsacksLength))
	costs := make([][]float64, len(req.KnapsacksLength))
	for i, n := range req.KnapsacksLength {
		weights[i] = make([]float64, n)
		costs[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			weights[i][j] = float64(req.MinimumWeight + j%span)
			costs[i][j] = 2 * weights[i][j]
		}
	}
	return map[string]any{"problem": map[string]any{"weights": weights, "costs": costs}}
}

func (s *Server) initialSolution(endpoint string, req request) any {
	if s.omitted(endpoint) {
		return map[string]any{}
	}
	solutions := make([][]int, len(req.Weights))
	for i, w := range req.Weights {
		solutions[i] = make([]int, len(w))
		if len(w) > 0 {
			solutions[i][0] = 1
		}
	}
	return map[string]any{"solutions": solutions}
}

func (s *Server) evaluate(endpoint string, req request) any {
	if s.omitted(endpoint) {
		return map[string]any{}
	}
	values := make([]float64, len(req.Knapsacks))
	for i, k := range req.Knapsacks {
		for j, bit := range k.Solution {
			values[i] += float64(bit) * k.Costs[j]
		}
	}
	return map[string]any{"current_values": values}
}

func (s *Server) search(endpoint string, req request) any {
	if s.omitted(endpoint) {
		return map[string]any{"solutions": req.Solutions}
	}
	return searchResult(endpoint, req)
}

func searchResult(endpoint string, req request) map[string]any {
	delta := 1.0
	switch endpoint {
	case solver.EndpointHillClimbRetry:
		delta = float64(req.Tmax)
	case solver.EndpointAnnealing:
		delta = req.InitialTemperature / 100
	}
	values := make([]float64, len(req.CurrentValues))
	for i, v := range req.CurrentValues {
		values[i] = v + delta
	}
	return map[string]any{"solutions": req.Solutions, "current_values": values}
}

func (s *Server) all(endpoint string, req request) any {
	out := map[string]any{
		"slope_climbing":     searchResult(solver.EndpointHillClimb, req),
		"slope_climbing_try": searchResult(solver.EndpointHillClimbRetry, req),
	}
	if !s.omitted(endpoint) {
		out["temperature"] = searchResult(solver.EndpointAnnealing, req)
	}
	return out
}

func (s *Server) genetic(endpoint string, req request) any {
	if s.omitted(endpoint) {
		return map[string]any{"solutions": []map[string]any{{"best": []int{1}}}}
	}
	value := float64(req.PopulationSize)/10 + float64(req.Generations)/100
	solutions := make([]map[string]any, len(req.Lengths))
	for i := range solutions {
		solutions[i] = map[string]any{"final_value": value}
	}
	return map[string]any{"solutions": solutions}
}
