package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/report"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "labd",
		Short:         "Multi-knapsack experiment orchestration against a remote solver service",
		Version:       report.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML config file (defaults apply when empty)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newRunCmd())
	return root
}

// loadConfig reads --config, falling back to defaults, and applies
// --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("labd failed", "error", err)
		os.Exit(1)
	}
}
