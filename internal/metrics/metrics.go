// Package metrics exposes Prometheus instrumentation for session generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sessiongen"

// Regeneration results.
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultFailure  = "failure"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	regenerations   *prometheus.CounterVec
	sessionsWritten prometheus.Counter
	skipped         *prometheus.CounterVec
	duration        prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		regenerations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regenerations_total",
			Help:      "Service session regenerations by result",
		}, []string{"result"}),
		sessionsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_written_total",
			Help:      "Sessions inserted by regenerations",
		}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_items_total",
			Help:      "Configuration items skipped during regeneration",
		}, []string{"kind"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "regeneration_duration_seconds",
			Help:      "Time taken to regenerate the sessions of one service",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
}

// ObserveRegeneration records one regeneration attempt.
func (m *Metrics) ObserveRegeneration(result string, elapsed time.Duration, written int) {
	if m == nil {
		return
	}
	m.regenerations.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
	if written > 0 {
		m.sessionsWritten.Add(float64(written))
	}
}

// Skipped records a configuration item left out of a regeneration.
func (m *Metrics) Skipped(kind string) {
	if m == nil {
		return
	}
	m.skipped.WithLabelValues(kind).Inc()
}
