package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

// validate is shared by config and payload validation.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("duration", validateDuration)
}

// validateDuration accepts empty strings and anything time.ParseDuration accepts.
func validateDuration(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	d, err := time.ParseDuration(s)
	return err == nil && d >= 0
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	names := make(map[string]bool)
	for _, s := range cfg.Experiment.AnnealingSchedules {
		if names[s.Name] {
			return fmt.Errorf("duplicate annealing schedule name: %s", s.Name)
		}
		names[s.Name] = true
	}

	if cb := cfg.Solver.CircuitBreaker; cb != nil && cb.Enabled {
		if cb.FailureThreshold <= 0 {
			return fmt.Errorf("circuit_breaker failure_threshold must be positive when enabled, got %d", cb.FailureThreshold)
		}
		if cb.SuccessThreshold <= 0 {
			return fmt.Errorf("circuit_breaker success_threshold must be positive when enabled, got %d", cb.SuccessThreshold)
		}
	}

	if cfg.Solver.RequestsPerSecond > 0 && cfg.Solver.Burst <= 0 {
		return fmt.Errorf("solver burst must be positive when requests_per_second is set, got %d", cfg.Solver.Burst)
	}

	return nil
}

// ValidateProblem checks a ProblemConfig payload
func ValidateProblem(p models.ProblemConfig) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid problem: %w", err)
	}
	return nil
}
