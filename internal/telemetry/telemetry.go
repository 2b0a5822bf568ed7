// Package telemetry wires the OpenTelemetry trace provider used by the
// solver client and experiment runner spans.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
)

var (
	ErrNilContext      = errors.New("telemetry: nil context")
	ErrUnknownExporter = errors.New("telemetry: unknown trace exporter")
)

// Config controls trace export.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// TraceExporter is "none" or "stdout".
	TraceExporter string
	// Writer receives stdout spans; nil means os.Stdout.
	Writer io.Writer
}

// FromConfig maps the daemon configuration onto a telemetry Config.
func FromConfig(cfg config.TelemetryConfig, version string) Config {
	return Config{
		ServiceName:    "knapsack-lab",
		ServiceVersion: version,
		TraceExporter:  cfg.TraceExporter,
	}
}

// Init installs a global tracer provider and returns its shutdown func.
// With the "none" exporter the global no-op provider stays in place and
// shutdown does nothing.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	noop := func(context.Context) error { return nil }

	switch cfg.TraceExporter {
	case "", "none":
		return noop, nil
	case "stdout":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}

	opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if cfg.Writer != nil {
		opts = append(opts, stdouttrace.WithWriter(cfg.Writer))
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
