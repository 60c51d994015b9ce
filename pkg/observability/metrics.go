// Package observability provides Prometheus instrumentation for the
// assistant pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded by the assistant and its adapters.
type Metrics struct {
	TurnsTotal         *prometheus.CounterVec
	NodeVisits         *prometheus.CounterVec
	CapabilityDuration *prometheus.HistogramVec
	Confirmations      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with the given
// registerer. Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_turns_total",
				Help: "Total number of handled turns",
			},
			[]string{"outcome"},
		),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_node_visits_total",
				Help: "Total number of pipeline node visits",
			},
			[]string{"node"},
		),
		CapabilityDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "steward_capability_duration_seconds",
				Help: "Duration of capability executions",
			},
			[]string{"capability"},
		),
		Confirmations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "steward_confirmations_total",
				Help: "Confirmation prompts by resolution",
			},
			[]string{"resolution"},
		),
	}

	reg.MustRegister(m.TurnsTotal, m.NodeVisits, m.CapabilityDuration, m.Confirmations)
	return m
}

// RecordTurn counts a completed turn by its outcome label
// (ok, error, confirmation, clarification).
func (m *Metrics) RecordTurn(outcome string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordNodeVisit counts a visit to a pipeline node.
func (m *Metrics) RecordNodeVisit(node string) {
	if m == nil {
		return
	}
	m.NodeVisits.WithLabelValues(node).Inc()
}

// ObserveCapability records the duration of a capability execution.
func (m *Metrics) ObserveCapability(capability string, d time.Duration) {
	if m == nil {
		return
	}
	m.CapabilityDuration.WithLabelValues(capability).Observe(d.Seconds())
}

// RecordConfirmation counts a confirmation resolution
// (requested, approved, declined).
func (m *Metrics) RecordConfirmation(resolution string) {
	if m == nil {
		return
	}
	m.Confirmations.WithLabelValues(resolution).Inc()
}
