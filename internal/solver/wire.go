package solver

// Remote solver endpoints, relative to the base URL.
const (
	EndpointProblem         = "/calc/knapsack/problem"
	EndpointInitialSolution = "/calc/knapsack/initial_solution"
	EndpointEvaluate        = "/calc/knapsack/evaluate_solution"
	EndpointHillClimb       = "/calc/knapsack/slope_climb"
	EndpointHillClimbRetry  = "/calc/knapsack/slope_climb_try_again"
	EndpointAnnealing       = "/calc/knapsack/tempera"
	EndpointAllMethods      = "/calc/knapsack/all"
	EndpointGenetic         = "/calc/knapsack/genetic_algorithm"
)

type problemRequest struct {
	KnapsacksLength []int `json:"knapsacks_length"`
	MinimumWeight   int   `json:"minimum_weight"`
	MaximumWeight   int   `json:"maximum_weight"`
}

type problemResponse struct {
	Problem *struct {
		Weights [][]float64 `json:"weights"`
		Costs   [][]float64 `json:"costs"`
	} `json:"problem"`
}

type initialSolutionRequest struct {
	Weights         [][]float64 `json:"weights"`
	KnapsacksLength []int       `json:"knapsacks_length"`
	MaximumWeights  []int       `json:"maximum_weights"`
}

type initialSolutionResponse struct {
	Solutions [][]int `json:"solutions"`
}

type evaluateKnapsack struct {
	Solution []int     `json:"solution"`
	Weights  []float64 `json:"weights"`
	Costs    []float64 `json:"costs"`
}

type evaluateRequest struct {
	Knapsacks []evaluateKnapsack `json:"knapsacks"`
}

type evaluateResponse struct {
	CurrentValues []float64 `json:"current_values"`
}

// searchRequest is shared by the local search endpoints; unused knobs are omitted.
type searchRequest struct {
	MaximumWeights     []int       `json:"maximum_weights"`
	Weights            [][]float64 `json:"weights"`
	Costs              [][]float64 `json:"costs"`
	Solutions          [][]int     `json:"solutions"`
	CurrentValues      []float64   `json:"current_values"`
	Tmax               int         `json:"Tmax,omitempty"`
	ReducerFactor      *float64    `json:"reducer_factor,omitempty"`
	InitialTemperature *float64    `json:"initial_temperature,omitempty"`
	FinalTemperature   *float64    `json:"final_temperature,omitempty"`
}

type searchResponse struct {
	Solutions     [][]int   `json:"solutions"`
	CurrentValues []float64 `json:"current_values"`
}

type allMethodsResponse struct {
	SlopeClimbing    *searchResponse `json:"slope_climbing"`
	SlopeClimbingTry *searchResponse `json:"slope_climbing_try"`
	Temperature      *searchResponse `json:"temperature"`
}

type geneticRequest struct {
	Costs           [][]float64 `json:"costs"`
	Lengths         []int       `json:"lengths"`
	Weights         [][]float64 `json:"weights"`
	MaximumWeights  []int       `json:"maximum_weights"`
	Generations     int         `json:"generations"`
	MutationRate    float64     `json:"mutation_rate"`
	PopulationSize  int         `json:"population_size"`
	CrossOverRate   float64     `json:"cross_over_rate"`
	KeepIndividuals float64     `json:"keep_individuals"`
}

type geneticSolution struct {
	FinalValue *float64 `json:"final_value"`
}

type geneticResponse struct {
	Solutions []geneticSolution `json:"solutions"`
}

func newSearchRequest(inst *Instance) searchRequest {
	return searchRequest{
		MaximumWeights: inst.MaxWeights,
		Weights:        inst.Problem.Weights,
		Costs:          inst.Problem.Costs,
		Solutions:      inst.Solutions,
		CurrentValues:  inst.Values,
	}
}

func (r *searchResponse) result() (Result, error) {
	if r == nil || r.CurrentValues == nil {
		return Result{}, ErrIncompleteResult
	}
	return Result{Solutions: r.Solutions, Values: r.CurrentValues}, nil
}

func (r *geneticResponse) result() (Result, error) {
	if len(r.Solutions) == 0 {
		return Result{}, ErrIncompleteResult
	}
	values := make([]float64, len(r.Solutions))
	for i, s := range r.Solutions {
		if s.FinalValue == nil {
			return Result{}, ErrIncompleteResult
		}
		values[i] = *s.FinalValue
	}
	return Result{Values: values}, nil
}

func float64Ptr(v float64) *float64 {
	return &v
}
