package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/knapsack-lab/internal/instance"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/labd"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/report"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/solver"
	"github.com/GoSim-25-26J-441/knapsack-lab/internal/telemetry"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC experiment servers",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.NewAuto(cfg.LogLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.Telemetry, report.Version))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("telemetry shutdown error", "error", err)
		}
	}()

	client, err := solver.NewClientFromConfig(cfg.Solver)
	if err != nil {
		return fmt.Errorf("solver client: %w", err)
	}

	var archive labd.Archive
	if cfg.Archive.Enabled() {
		a, err := labd.OpenArchive(cfg.Archive, logger.Default)
		if err != nil {
			return err
		}
		defer a.Close()
		archive = a
	}

	store := labd.NewStore(archive)
	executor := labd.NewExecutor(store, instance.NewProvider(client, cfg.Experiment.MaxKnapsacks), client, cfg.Experiment)

	// TODO: Configure gRPC server security (TLS, authentication) before
	// exposing this service outside a trusted network.
	grpcServer := grpc.NewServer()
	labd.RegisterGRPC(grpcServer, executor)

	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen for gRPC on %s: %w", cfg.Server.GRPCAddr, err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           labd.NewHTTPServer(executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	if err := executor.Shutdown(shutdownCtx); err != nil {
		logger.Warn("experiments still running at shutdown", "error", err)
	}
	return nil
}
