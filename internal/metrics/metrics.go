// Package metrics exposes Prometheus metrics for bay events and occupancy.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "baylight"

// Outcomes recorded for a handled uevent.
const (
	OutcomeLit     = "lit"
	OutcomeCleared = "cleared"
	OutcomeIgnored = "ignored"
	OutcomeFailed  = "failed"
)

// Metrics holds the daemon's collectors on a private registry so repeated
// construction in tests never collides with the default registry.
type Metrics struct {
	registry *prometheus.Registry

	eventsTotal     *prometheus.CounterVec
	bayOccupied     *prometheus.GaugeVec
	bayOffset       prometheus.Gauge
	startupDevices  prometheus.Gauge
	indicatorErrors prometheus.Counter
}

// New creates a Metrics instance with every collector registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Storage uevents handled, by action and outcome",
			},
			[]string{"action", "outcome"},
		),

		bayOccupied: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bay_occupied",
				Help:      "1 while a drive is seated in the bay",
			},
			[]string{"bay"},
		),

		bayOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bay_offset",
			Help:      "Host adapter offset calibrated at startup",
		}),

		startupDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "startup_devices",
			Help:      "Storage devices placed in a bay during startup enumeration",
		}),

		indicatorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "indicator_errors_total",
			Help:      "Failed LED updates",
		}),
	}

	reg.MustRegister(
		m.eventsTotal,
		m.bayOccupied,
		m.bayOffset,
		m.startupDevices,
		m.indicatorErrors,
	)

	return m
}

// Handler returns an http.Handler serving this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry exposes the underlying registry for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordEvent counts a handled uevent. A nil receiver is a no-op.
func (m *Metrics) RecordEvent(action, outcome string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(action, outcome).Inc()
}

// SetOccupied records the occupancy of a one-based bay.
func (m *Metrics) SetOccupied(bay int, occupied bool) {
	if m == nil {
		return
	}
	value := 0.0
	if occupied {
		value = 1
	}
	m.bayOccupied.WithLabelValues(strconv.Itoa(bay)).Set(value)
}

// SetCalibration records the startup reconciliation result.
func (m *Metrics) SetCalibration(offset, placed int) {
	if m == nil {
		return
	}
	m.bayOffset.Set(float64(offset))
	m.startupDevices.Set(float64(placed))
}

// RecordIndicatorError counts a failed LED update.
func (m *Metrics) RecordIndicatorError() {
	if m == nil {
		return
	}
	m.indicatorErrors.Inc()
}
