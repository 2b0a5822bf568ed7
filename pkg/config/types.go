package config

import (
	"time"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// Config represents the main daemon configuration
type Config struct {
	LogLevel   string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	Server     ServerConfig     `yaml:"server"`
	Solver     SolverConfig     `yaml:"solver"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Archive    ArchiveConfig    `yaml:"archive"`
}

// ServerConfig holds listener addresses
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" validate:"required"`
	GRPCAddr string `yaml:"grpc_addr" validate:"required"`
}

// SolverConfig describes how the remote solver service is reached
type SolverConfig struct {
	BaseURL           string                `yaml:"base_url" validate:"required,url"`
	Timeout           string                `yaml:"timeout" validate:"duration"` // e.g., "60s"
	RequestsPerSecond float64               `yaml:"requests_per_second" validate:"gte=0"` // 0 disables limiting
	Burst             int                   `yaml:"burst" validate:"gte=0"`
	CircuitBreaker    *CircuitBreakerConfig `yaml:"circuit_breaker,omitempty"`
}

// GetTimeout parses the timeout string
func (s *SolverConfig) GetTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Timeout)
}

// CircuitBreakerConfig configures short-circuiting of a failing solver endpoint
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold int    `yaml:"failure_threshold" validate:"gte=0"`
	SuccessThreshold int    `yaml:"success_threshold" validate:"gte=0"`
	Timeout          string `yaml:"timeout" validate:"duration"` // how long the circuit stays open
}

// GetTimeout parses the open-state timeout
func (c *CircuitBreakerConfig) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Timeout)
}

// ExperimentConfig holds run defaults and the method catalogues
type ExperimentConfig struct {
	Repetitions           int                      `yaml:"repetitions" validate:"gt=0"`
	Concurrency           int                      `yaml:"concurrency" validate:"gt=0"`
	Seed                  int64                    `yaml:"seed"` // 0 means time based
	MaxKnapsacks          int                      `yaml:"max_knapsacks" validate:"gt=0"`
	AnnealingSchedules    []AnnealingSchedule      `yaml:"annealing_schedules" validate:"dive"`
	GeneticConfigurations []models.GAConfiguration `yaml:"genetic_configurations" validate:"dive"`
}

// AnnealingSchedule is one named simulated annealing parameter set
type AnnealingSchedule struct {
	Name        string  `yaml:"name" validate:"required"`
	InitialTemp float64 `yaml:"initial_temperature" validate:"gte=0"`
	FinalTemp   float64 `yaml:"final_temperature" validate:"gt=0"`
	CoolingRate float64 `yaml:"cooling_rate" validate:"gt=0,lt=1"`
}

// TelemetryConfig selects the trace exporter
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" validate:"oneof=none stdout"`
}

// ArchiveConfig configures persistence of finished experiments
type ArchiveConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// Enabled reports whether an archive should be opened
func (a ArchiveConfig) Enabled() bool {
	return a.InMemory || a.Path != ""
}
