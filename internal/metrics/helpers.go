package metrics

import (
	"strconv"
	"time"
)

// RecordSolverCall records one remote call and its latency
func RecordSolverCall(endpoint, result string, elapsed time.Duration) {
	solverCallsTotal.WithLabelValues(endpoint, result).Inc()
	solverCallDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RecordTrial records the outcome of one method invocation
func RecordTrial(method string, fallback bool) {
	trialsTotal.WithLabelValues(method, strconv.FormatBool(fallback)).Inc()
}

// RecordRepetition records the wall time of one repetition
func RecordRepetition(kind string, elapsed time.Duration) {
	repetitionDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ExperimentStarted marks an experiment as executing
func ExperimentStarted(kind string) {
	experimentsRunning.WithLabelValues(kind).Inc()
}

// ExperimentFinished records the terminal status of an experiment
func ExperimentFinished(kind, status string) {
	experimentsRunning.WithLabelValues(kind).Dec()
	experimentsTotal.WithLabelValues(kind, status).Inc()
}
