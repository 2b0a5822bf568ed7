// Package solver invokes the remote knapsack heuristics over HTTP.
package solver

import (
	"fmt"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// Method is one heuristic configuration. The set of implementations is closed.
type Method interface {
	// Kind is a stable identifier used for metrics and logs.
	Kind() string
	isMethod()
}

// HillClimb is a single steepest-ascent pass.
type HillClimb struct{}

// HillClimbWithRetries restarts hill climbing up to Attempts times.
type HillClimbWithRetries struct {
	Attempts int
}

// SimulatedAnnealing cools geometrically from InitialTemp to FinalTemp.
type SimulatedAnnealing struct {
	InitialTemp float64
	FinalTemp   float64
	CoolingRate float64
}

// GeneticAlgorithm runs the remote GA with the embedded configuration.
type GeneticAlgorithm struct {
	models.GAConfiguration
}

func (HillClimb) Kind() string            { return "hill_climb" }
func (HillClimbWithRetries) Kind() string { return "hill_climb_retries" }
func (SimulatedAnnealing) Kind() string   { return "simulated_annealing" }
func (GeneticAlgorithm) Kind() string     { return "genetic_algorithm" }

func (HillClimb) isMethod()            {}
func (HillClimbWithRetries) isMethod() {}
func (SimulatedAnnealing) isMethod()   {}
func (GeneticAlgorithm) isMethod()     {}

func (m HillClimbWithRetries) String() string {
	return fmt.Sprintf("hill_climb_retries(attempts=%d)", m.Attempts)
}

func (m SimulatedAnnealing) String() string {
	return fmt.Sprintf("simulated_annealing(t0=%g, tf=%g, rate=%g)", m.InitialTemp, m.FinalTemp, m.CoolingRate)
}

func (m GeneticAlgorithm) String() string {
	return fmt.Sprintf("genetic_algorithm(pop=%d, gen=%d, cross=%g, mut=%g, elite=%g)",
		m.PopulationSize, m.Generations, m.CrossoverRate, m.MutationRate, m.EliteFraction)
}
