package config

import (
	"fmt"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// Default returns the reference configuration: 20 sequential repetitions,
// nine annealing schedules and fifteen genetic algorithm configurations.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			HTTPAddr: ":8080",
			GRPCAddr: ":50051",
		},
		Solver: SolverConfig{
			BaseURL: "http://localhost:5000",
			Timeout: "60s",
			Burst:   1,
		},
		Experiment: ExperimentConfig{
			Repetitions:           20,
			Concurrency:           1,
			MaxKnapsacks:          10,
			AnnealingSchedules:    DefaultAnnealingSchedules(),
			GeneticConfigurations: DefaultGeneticConfigurations(),
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// DefaultAnnealingSchedules returns initial temperatures 1000, 500 and 0,
// each with (final 0.1, rate 0.8), (final 0.1, rate 0.9) and (final 0.01, rate 0.8).
func DefaultAnnealingSchedules() []AnnealingSchedule {
	variants := []struct{ final, rate float64 }{
		{0.1, 0.8},
		{0.1, 0.9},
		{0.01, 0.8},
	}
	var out []AnnealingSchedule
	for _, initial := range []float64{1000, 500, 0} {
		for _, v := range variants {
			out = append(out, AnnealingSchedule{
				Name:        fmt.Sprintf("Simulated Annealing %02d", len(out)+1),
				InitialTemp: initial,
				FinalTemp:   v.final,
				CoolingRate: v.rate,
			})
		}
	}
	return out
}

// DefaultGeneticConfigurations returns populations 50, 100 and 200, each
// with a baseline and four single-field variations.
func DefaultGeneticConfigurations() []models.GAConfiguration {
	variants := []struct {
		generations int
		crossover   float64
		mutation    float64
		elite       float64
	}{
		{100, 0.7, 0.01, 0.1},
		{200, 0.7, 0.01, 0.1},
		{100, 0.8, 0.01, 0.1},
		{100, 0.7, 0.02, 0.1},
		{100, 0.7, 0.01, 0.2},
	}
	var out []models.GAConfiguration
	for _, pop := range []int{50, 100, 200} {
		for _, v := range variants {
			out = append(out, models.GAConfiguration{
				PopulationSize: pop,
				Generations:    v.generations,
				CrossoverRate:  v.crossover,
				MutationRate:   v.mutation,
				EliteFraction:  v.elite,
			})
		}
	}
	return out
}
