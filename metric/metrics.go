// Package metric holds the Prometheus metric set of the exchange core:
// event projection, matching, taxonomy refreshes, and store faults.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics contains the exchange-wide metric set. A nil *Metrics is a valid
// no-op receiver so components can run unmetered in tests.
type Metrics struct {
	EventsProcessed    *prometheus.CounterVec
	ProjectionDuration *prometheus.HistogramVec
	MatchesTotal       *prometheus.CounterVec
	MatchDuration      prometheus.Histogram
	MatchResults       prometheus.Histogram
	TaxonomyRefreshes  prometheus.Counter
	TaxonomyVersion    prometheus.Gauge
	StoreErrors        *prometheus.CounterVec
}

// NewMetrics creates the exchange metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semexchange",
				Subsystem: "projector",
				Name:      "events_processed_total",
				Help:      "Total domain events processed by the projector",
			},
			[]string{"event_type", "status"},
		),

		ProjectionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "semexchange",
				Subsystem: "projector",
				Name:      "duration_seconds",
				Help:      "Event projection duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),

		MatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semexchange",
				Subsystem: "matcher",
				Name:      "matches_total",
				Help:      "Total match requests served",
			},
			[]string{"status"},
		),

		MatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "semexchange",
				Subsystem: "matcher",
				Name:      "duration_seconds",
				Help:      "Match request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),

		MatchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "semexchange",
				Subsystem: "matcher",
				Name:      "results",
				Help:      "Offering count returned per match request",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
			},
		),

		TaxonomyRefreshes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "semexchange",
				Subsystem: "taxonomy",
				Name:      "refreshes_total",
				Help:      "Total taxonomy snapshot rebuilds",
			},
		),

		TaxonomyVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "semexchange",
				Subsystem: "taxonomy",
				Name:      "snapshot_version",
				Help:      "Current taxonomy snapshot version",
			},
		),

		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "semexchange",
				Subsystem: "store",
				Name:      "errors_total",
				Help:      "Total graph store adapter faults by component",
			},
			[]string{"component"},
		),
	}
}

// ObserveEvent records one projected event with its outcome and duration.
func (m *Metrics) ObserveEvent(eventType, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EventsProcessed.WithLabelValues(eventType, status).Inc()
	m.ProjectionDuration.WithLabelValues(eventType).Observe(elapsed.Seconds())
}

// ObserveMatch records one match request with its outcome, duration and
// result count.
func (m *Metrics) ObserveMatch(status string, elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	m.MatchesTotal.WithLabelValues(status).Inc()
	m.MatchDuration.Observe(elapsed.Seconds())
	if status == "success" {
		m.MatchResults.Observe(float64(results))
	}
}

// ObserveRefresh records one taxonomy snapshot rebuild.
func (m *Metrics) ObserveRefresh(version uint64) {
	if m == nil {
		return
	}
	m.TaxonomyRefreshes.Inc()
	m.TaxonomyVersion.Set(float64(version))
}

// ObserveStoreError records one adapter fault attributed to a component.
func (m *Metrics) ObserveStoreError(component string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(component).Inc()
}

// NewRegistry returns a fresh Prometheus registry with the exchange metric
// set and the Go runtime collectors registered.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics()
	registry.MustRegister(
		metrics.EventsProcessed,
		metrics.ProjectionDuration,
		metrics.MatchesTotal,
		metrics.MatchDuration,
		metrics.MatchResults,
		metrics.TaxonomyRefreshes,
		metrics.TaxonomyVersion,
		metrics.StoreErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, metrics
}
