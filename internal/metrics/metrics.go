// Package metrics exposes the Prometheus collectors of the reminder pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "taskpulse"

// Metrics reports generation, delivery and connection activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	generationAttempts *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	dispatchOutcomes   *prometheus.CounterVec
	deliveries         *prometheus.CounterVec
	liveConnections    prometheus.Gauge
}

// MustNew registers the collectors with reg and panics when registration
// fails. A nil reg uses prometheus.DefaultRegisterer.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		generationAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_attempts_total",
				Help:      "Content generation attempts by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		generationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Duration of single content generation attempts.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		dispatchOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_outcomes_total",
				Help:      "Per-channel delivery outcomes.",
			},
			[]string{"channel", "outcome"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminder_deliveries_total",
				Help:      "Background reminder deliveries by result.",
			},
			[]string{"result"},
		),
		liveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_connections",
				Help:      "Recipients currently holding a live connection.",
			},
		),
	}

	reg.MustRegister(
		m.generationAttempts,
		m.generationDuration,
		m.dispatchOutcomes,
		m.deliveries,
		m.liveConnections,
	)
	return m
}

// ObserveGenerationAttempt implements generation.Observer.
func (m *Metrics) ObserveGenerationAttempt(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generationAttempts.WithLabelValues(provider, outcome).Inc()
	m.generationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveDispatch counts one channel outcome.
func (m *Metrics) ObserveDispatch(channel, outcome string) {
	if m == nil {
		return
	}
	m.dispatchOutcomes.WithLabelValues(channel, outcome).Inc()
}

// ObserveDelivery counts one background delivery with result
// sent, skipped or failed.
func (m *Metrics) ObserveDelivery(result string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(result).Inc()
}

// SetLiveConnections records the number of online recipients.
func (m *Metrics) SetLiveConnections(n int) {
	if m == nil {
		return
	}
	m.liveConnections.Set(float64(n))
}
