package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
)

func TestInitNone(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{TraceExporter: "none"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{TraceExporter: "otlp"})
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInitNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Init(nil, Config{})
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInitStdoutExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{
		ServiceName:    "knapsack-lab-test",
		ServiceVersion: "test",
		TraceExporter:  "stdout",
		Writer:         &buf,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "solver.call")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "solver.call")
	assert.Contains(t, buf.String(), "knapsack-lab-test")
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.TelemetryConfig{TraceExporter: "stdout"}, "1.2.3")
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, "knapsack-lab", cfg.ServiceName)
}
