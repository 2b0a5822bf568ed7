// Package metrics exposes Prometheus instruments for solver calls, trials
// and experiment runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// solverCallsTotal counts remote solver calls by endpoint and result.
	// Results: "success", "incomplete", "http_error", "transport_error", "circuit_open", "canceled"
	solverCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knapsack_lab_solver_calls_total",
		Help: "Total remote solver calls by endpoint and result",
	}, []string{"endpoint", "result"})

	solverCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "knapsack_lab_solver_call_duration_seconds",
		Help:    "Remote solver call latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"endpoint"})

	trialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knapsack_lab_trials_total",
		Help: "Method trials by method and whether the initial value was used as fallback",
	}, []string{"method", "fallback"})

	experimentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knapsack_lab_experiments_total",
		Help: "Finished experiments by kind and terminal status",
	}, []string{"kind", "status"})

	experimentsRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "knapsack_lab_experiments_running",
		Help: "Experiments currently executing",
	}, []string{"kind"})

	repetitionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "knapsack_lab_repetition_duration_seconds",
		Help:    "Wall time of one repetition including every method",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"kind"})
)

// Handler serves the default Prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
