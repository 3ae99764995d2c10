package observability

import (
	"github.com/aretw0/propschema"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records validator calls.
type Metrics struct {
	Calls       *prometheus.CounterVec
	Invalid     *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Diagnostics *prometheus.CounterVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	labels := []string{"operation", "resource_type", "version"}
	return &Metrics{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propschema_calls_total",
				Help: "Total number of validator calls",
			},
			labels,
		),
		Invalid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propschema_invalid_bags_total",
				Help: "Total number of property bags that failed validation",
			},
			[]string{"resource_type", "version"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propschema_failures_total",
				Help: "Total number of default or transform calls that returned an error",
			},
			labels,
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "propschema_call_duration_seconds",
				Help:    "Duration of validator calls",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			labels,
		),
		Diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "propschema_diagnostics_total",
				Help: "Total number of validation errors and warnings reported",
			},
			[]string{"resource_type", "version", "severity"},
		),
	}
}

// MustRegister registers every collector with reg.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.Calls, m.Invalid, m.Failures, m.Duration, m.Diagnostics)
}

// Hooks returns validator hooks feeding the collectors.
func (m *Metrics) Hooks() propschema.Hooks {
	return propschema.Hooks{
		OnValidate:  m.observe,
		OnDefaults:  m.observe,
		OnTransform: m.observe,
	}
}

func (m *Metrics) observe(e *propschema.Event) {
	op := string(e.Operation)
	m.Calls.WithLabelValues(op, e.ResourceType, e.Version).Inc()
	m.Duration.WithLabelValues(op, e.ResourceType, e.Version).Observe(e.Duration.Seconds())

	switch e.Operation {
	case propschema.OpValidate:
		if !e.Valid {
			m.Invalid.WithLabelValues(e.ResourceType, e.Version).Inc()
		}
		m.Diagnostics.WithLabelValues(e.ResourceType, e.Version, "error").Add(float64(e.Errors))
		m.Diagnostics.WithLabelValues(e.ResourceType, e.Version, "warning").Add(float64(e.Warnings))
	default:
		if e.Err != nil {
			m.Failures.WithLabelValues(op, e.ResourceType, e.Version).Inc()
		}
	}
}
