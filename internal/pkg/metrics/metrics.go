// Package metrics holds the registry's Prometheus collectors.
//
// Import Path: landledger.io/registry/internal/pkg/metrics
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"landledger.io/registry/internal/domain"
)

// Integrity check results.
const (
	ResultValid    = "valid"
	ResultTampered = "tampered"
	ResultMissing  = "missing"
)

// Metrics provides observability for the registry. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP requests by method, route template and status
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Committed domain events by type
	DomainEvents *prometheus.CounterVec

	// Deed verifications by result
	IntegrityChecks *prometheus.CounterVec
	SweepDuration   prometheus.Histogram
	LedgerHeight    prometheus.Gauge
}

// New creates a Metrics instance registered on a fresh registry that also
// carries the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),

		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),

		DomainEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_domain_events_total",
			Help: "Committed registry events by type",
		}, []string{"event_type"}),

		IntegrityChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_integrity_checks_total",
			Help: "Deed integrity verifications by result",
		}, []string{"result"}),

		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_integrity_sweep_duration_seconds",
			Help:    "Duration of full ledger verification sweeps",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),

		LedgerHeight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "registry_ledger_entries",
			Help: "Number of deeds sealed in the ledger at the last sweep",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// IncrementIntegrityCheck records a verification result.
func (m *Metrics) IncrementIntegrityCheck(result string) {
	if m != nil {
		m.IntegrityChecks.WithLabelValues(result).Inc()
	}
}

// ObserveSweep records a completed sweep over n ledger entries.
func (m *Metrics) ObserveSweep(n int, d time.Duration) {
	if m != nil {
		m.SweepDuration.Observe(d.Seconds())
		m.LedgerHeight.Set(float64(n))
	}
}

// EventHandler counts committed domain events.
func (m *Metrics) EventHandler() domain.EventHandler {
	return func(_ context.Context, event *domain.DomainEvent) error {
		if m != nil {
			m.DomainEvents.WithLabelValues(string(event.EventType)).Inc()
		}
		return nil
	}
}
