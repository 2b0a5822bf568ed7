package experiment

import (
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
)

// Series names used by the experiments.
const (
	SeriesInitial     = "Initial Solutions"
	SeriesHillClimb   = "Hill Climbing"
	SeriesHillClimbN  = "Hill Climbing N Attempts"
	SeriesHillClimb2N = "Hill Climbing 2N Attempts"
	SeriesAnnealing   = "Simulated Annealing"
)

const (
	allMethodsInitialTemp = 10
	allMethodsFinalTemp   = 0.1
	allMethodsCoolingRate = 0.95
)

// NamedMethod pairs a method with its display name
type NamedMethod struct {
	Name   string
	Method solver.Method
}

// DefaultMethods returns hill climbing, N and 2N attempt hill climbing (N =
// problemSize) and one simulated annealing method per schedule.
func DefaultMethods(problemSize int, schedules []config.AnnealingSchedule) []NamedMethod {
	methods := []NamedMethod{
		{Name: SeriesHillClimb, Method: solver.HillClimb{}},
		{Name: SeriesHillClimbN, Method: solver.HillClimbWithRetries{Attempts: problemSize}},
		{Name: SeriesHillClimb2N, Method: solver.HillClimbWithRetries{Attempts: 2 * problemSize}},
	}
	for _, s := range schedules {
		methods = append(methods, NamedMethod{
			Name: s.Name,
			Method: solver.SimulatedAnnealing{
				InitialTemp: s.InitialTemp,
				FinalTemp:   s.FinalTemp,
				CoolingRate: s.CoolingRate,
			},
		})
	}
	return methods
}

// AllMethodsParams returns the combined-endpoint settings for problemSize
func AllMethodsParams(problemSize int) solver.AllMethodsParams {
	return solver.AllMethodsParams{
		Attempts:    problemSize,
		InitialTemp: allMethodsInitialTemp,
		FinalTemp:   allMethodsFinalTemp,
		CoolingRate: allMethodsCoolingRate,
	}
}
