// Package metrics holds the Prometheus collectors of the template applier and rollover detector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Apply results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics is a per-process registry; a nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	applies   *prometheus.CounterVec
	rollovers *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	m := &Metrics{
		Registry: reg,
		applies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supptrack_template_apply_total",
			Help: "Single-date template applications by result.",
		}, []string{"result"}),
		rollovers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "supptrack_rollover_transitions_total",
			Help: "Day transitions handled by the rollover detector, by policy taken.",
		}, []string{"policy"}),
	}
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// Apply counts one single-date application.
func (m *Metrics) Apply(result string) {
	if m == nil {
		return
	}
	m.applies.WithLabelValues(result).Inc()
}

// Rollover counts one day transition.
func (m *Metrics) Rollover(policy string) {
	if m == nil {
		return
	}
	m.rollovers.WithLabelValues(policy).Inc()
}

// ApplyCounter exposes the apply counter for tests and dashboards.
func (m *Metrics) ApplyCounter(result string) prometheus.Counter {
	return m.applies.WithLabelValues(result)
}

// RolloverCounter exposes the rollover counter for tests and dashboards.
func (m *Metrics) RolloverCounter(policy string) prometheus.Counter {
	return m.rollovers.WithLabelValues(policy)
}
