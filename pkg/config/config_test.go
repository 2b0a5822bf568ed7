package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("../../config/labd.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.Solver.BaseURL != "http://localhost:5000" {
		t.Errorf("Expected solver base_url, got '%s'", cfg.Solver.BaseURL)
	}
	timeout, err := cfg.Solver.GetTimeout()
	if err != nil {
		t.Fatalf("Failed to parse solver timeout: %v", err)
	}
	if timeout != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", timeout)
	}
	if cfg.Solver.CircuitBreaker == nil || !cfg.Solver.CircuitBreaker.Enabled {
		t.Fatal("Expected circuit breaker to be enabled")
	}
	if cfg.Experiment.Repetitions != 20 {
		t.Errorf("Expected 20 repetitions, got %d", cfg.Experiment.Repetitions)
	}
	// Catalogues are not in the file, so defaults apply.
	if len(cfg.Experiment.AnnealingSchedules) != 9 {
		t.Errorf("Expected 9 default annealing schedules, got %d", len(cfg.Experiment.AnnealingSchedules))
	}
	if len(cfg.Experiment.GeneticConfigurations) != 15 {
		t.Errorf("Expected 15 default genetic configurations, got %d", len(cfg.Experiment.GeneticConfigurations))
	}
	if cfg.Archive.Path != "./data/archive" || !cfg.Archive.Enabled() {
		t.Errorf("Expected archive path to be set, got %+v", cfg.Archive)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadConfigFromTempFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labd.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug, got %s", cfg.LogLevel)
	}
	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("Expected default http_addr, got %s", cfg.Server.HTTPAddr)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := validateConfig(Default()); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
}

func TestDefaultAnnealingSchedules(t *testing.T) {
	schedules := DefaultAnnealingSchedules()
	if len(schedules) != 9 {
		t.Fatalf("Expected 9 schedules, got %d", len(schedules))
	}

	first := schedules[0]
	if first.Name != "Simulated Annealing 01" || first.InitialTemp != 1000 || first.FinalTemp != 0.1 || first.CoolingRate != 0.8 {
		t.Errorf("Unexpected first schedule: %+v", first)
	}
	sixth := schedules[5]
	if sixth.Name != "Simulated Annealing 06" || sixth.InitialTemp != 500 || sixth.FinalTemp != 0.01 || sixth.CoolingRate != 0.8 {
		t.Errorf("Unexpected sixth schedule: %+v", sixth)
	}
	last := schedules[8]
	if last.Name != "Simulated Annealing 09" || last.InitialTemp != 0 || last.FinalTemp != 0.01 {
		t.Errorf("Unexpected last schedule: %+v", last)
	}
}

func TestDefaultGeneticConfigurations(t *testing.T) {
	cfgs := DefaultGeneticConfigurations()
	if len(cfgs) != 15 {
		t.Fatalf("Expected 15 configurations, got %d", len(cfgs))
	}

	want := models.GAConfiguration{PopulationSize: 100, Generations: 200, CrossoverRate: 0.7, MutationRate: 0.01, EliteFraction: 0.1}
	if cfgs[6] != want {
		t.Errorf("cfgs[6] = %+v, expected %+v", cfgs[6], want)
	}
	if cfgs[14].PopulationSize != 200 || cfgs[14].EliteFraction != 0.2 {
		t.Errorf("Unexpected last configuration: %+v", cfgs[14])
	}
}

func TestParseConfigYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			yaml:    "log_level: [",
			wantErr: "failed to parse config yaml",
		},
		{
			name:    "bad log level",
			yaml:    "log_level: verbose",
			wantErr: "LogLevel",
		},
		{
			name:    "zero repetitions",
			yaml:    "experiment:\n  repetitions: 0",
			wantErr: "Repetitions",
		},
		{
			name:    "bad timeout",
			yaml:    "solver:\n  timeout: soon",
			wantErr: "Timeout",
		},
		{
			name:    "bad exporter",
			yaml:    "telemetry:\n  trace_exporter: jaeger",
			wantErr: "TraceExporter",
		},
		{
			name:    "bad genetic configuration",
			yaml:    "experiment:\n  genetic_configurations:\n    - population_size: 10\n      generations: 10\n      crossover_rate: 1.5\n      mutation_rate: 0.01\n      elite_fraction: 0.1",
			wantErr: "CrossoverRate",
		},
		{
			name:    "duplicate schedule",
			yaml:    "experiment:\n  annealing_schedules:\n    - {name: a, initial_temperature: 10, final_temperature: 0.1, cooling_rate: 0.9}\n    - {name: a, initial_temperature: 5, final_temperature: 0.1, cooling_rate: 0.9}",
			wantErr: "duplicate annealing schedule name",
		},
		{
			name:    "breaker without thresholds",
			yaml:    "solver:\n  circuit_breaker:\n    enabled: true",
			wantErr: "failure_threshold",
		},
		{
			name:    "rate without burst",
			yaml:    "solver:\n  requests_per_second: 5\n  burst: 0",
			wantErr: "burst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfigYAMLString(tt.yaml)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseConfigYAMLOverridesCatalogue(t *testing.T) {
	cfg, err := ParseConfigYAMLString(`
experiment:
  genetic_configurations:
    - population_size: 30
      generations: 40
      crossover_rate: 0.6
      mutation_rate: 0.05
      elite_fraction: 0.1
`)
	if err != nil {
		t.Fatalf("ParseConfigYAMLString failed: %v", err)
	}
	if len(cfg.Experiment.GeneticConfigurations) != 1 {
		t.Fatalf("Expected catalogue to be replaced, got %d entries", len(cfg.Experiment.GeneticConfigurations))
	}
	if cfg.Experiment.GeneticConfigurations[0].PopulationSize != 30 {
		t.Errorf("Unexpected configuration: %+v", cfg.Experiment.GeneticConfigurations[0])
	}
}

func TestValidateProblem(t *testing.T) {
	tests := []struct {
		name    string
		problem models.ProblemConfig
		valid   bool
	}{
		{"valid", models.ProblemConfig{ProblemSize: 10, Capacity: 50, MinItemWeight: 1, MaxItemWeight: 10}, true},
		{"equal weights", models.ProblemConfig{ProblemSize: 10, Capacity: 50, MinItemWeight: 5, MaxItemWeight: 5}, true},
		{"zero size", models.ProblemConfig{ProblemSize: 0, Capacity: 50, MinItemWeight: 1, MaxItemWeight: 10}, false},
		{"negative capacity", models.ProblemConfig{ProblemSize: 10, Capacity: -1, MinItemWeight: 1, MaxItemWeight: 10}, false},
		{"min above max", models.ProblemConfig{ProblemSize: 10, Capacity: 50, MinItemWeight: 11, MaxItemWeight: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProblem(tt.problem)
			if tt.valid && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestParseConfigYAMLRejectsBadGeneticConfiguration(t *testing.T) {
	yamlText := `
experiment:
  genetic_configurations:
    - population_size: 50
      generations: 100
      crossover_rate: 0.8
      mutation_rate: 0.01
      elite_fraction: 0.1
    - population_size: 0
      generations: 100
      crossover_rate: 0.8
      mutation_rate: 0.01
      elite_fraction: 0.1
`
	if _, err := ParseConfigYAMLString(yamlText); err == nil {
		t.Fatal("Expected error for a genetic configuration with zero population")
	}
}
