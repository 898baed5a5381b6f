// Package metrics exposes Prometheus instrumentation for analysis runs and
// computation units.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes recorded on gostatcore_analysis_runs_total
const (
	OutcomeSuccess    = "success"
	OutcomeFailed     = "failed"
	OutcomePartial    = "partial"
	OutcomeCancelled  = "cancelled"
	OutcomeInvalid    = "invalid"
	OutcomeSaveFailed = "save_failed"
)

var (
	analysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gostatcore_analysis_runs_total",
			Help: "Analysis runs by procedure and outcome.",
		},
		[]string{"procedure", "outcome"},
	)

	variableErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gostatcore_variable_errors_total",
			Help: "Per-variable computation errors by procedure.",
		},
		[]string{"procedure"},
	)

	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gostatcore_analysis_duration_seconds",
			Help:    "Time from dispatch to completion of an analysis run.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)

	activeUnits = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gostatcore_active_units",
			Help: "Computation units currently alive.",
		},
	)

	registerOnce sync.Once
)

// Register adds the collectors to the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(analysisRuns, variableErrors, analysisDuration, activeUnits)
	})
}

// Handler serves the default registry
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// RecordRun counts one finished run and observes its duration
func RecordRun(procedure, outcome string, elapsed time.Duration) {
	analysisRuns.WithLabelValues(procedure, outcome).Inc()
	if outcome != OutcomeInvalid && outcome != OutcomeCancelled {
		analysisDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
	}
}

// RecordVariableError counts one per-variable error
func RecordVariableError(procedure string) {
	variableErrors.WithLabelValues(procedure).Inc()
}

// UnitStarted increments the live unit gauge
func UnitStarted() { activeUnits.Inc() }

// UnitStopped decrements the live unit gauge
func UnitStopped() { activeUnits.Dec() }
