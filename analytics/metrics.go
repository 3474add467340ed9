package analytics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadersync/core"
)

const namespace = "leadersync"

// Metrics exports controller events and remote request outcomes to Prometheus.
// It is both a Hook and an sdk request observer.
type Metrics struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	staleDiscards prometheus.Counter
	entries       prometheus.Gauge
	totalCount    prometheus.Gauge
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Controller events by type.",
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Remote requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Remote request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_stale_discards_total",
			Help:      "Search responses dropped because a newer query superseded them.",
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "list_entries",
			Help:      "Entries currently loaded in the list.",
		}),
		totalCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "list_total_count",
			Help:      "Total entries reported by the service.",
		}),
	}
	m.registry.MustRegister(m.events, m.requests, m.duration, m.staleDiscards, m.entries, m.totalCount)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OnEvent(_ context.Context, e core.Event) {
	m.events.WithLabelValues(string(e.Type)).Inc()
	switch e.Type {
	case core.EventSearchDiscarded:
		m.staleDiscards.Inc()
	case core.EventListChanged:
		if e.List != nil {
			m.entries.Set(float64(len(e.List.Entries)))
			m.totalCount.Set(float64(e.List.TotalCount))
		}
	}
}

// ObserveRequest records one remote call.
func (m *Metrics) ObserveRequest(op string, elapsed time.Duration, err error) {
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
