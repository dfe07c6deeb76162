// Package metrics defines the Prometheus collectors used by the service and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	RowsProcessedTotal   *prometheus.CounterVec
	RowsInsertedTotal    *prometheus.CounterVec
	IngestionFailures    *prometheus.CounterVec
	IngestionDuration    *prometheus.HistogramVec
	AggregateQueries     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them on a fresh registry, so
// several instances can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		RowsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_rows_processed_total",
				Help: "Parsed upload rows by entity and validation outcome (accepted, rejected).",
			},
			[]string{"entity", "outcome"},
		),
		RowsInsertedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_rows_inserted_total",
				Help: "Rows committed to the store by entity.",
			},
			[]string{"entity"},
		),
		IngestionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingestion_failures_total",
				Help: "Failed ingestion calls by entity and failure kind.",
			},
			[]string{"entity", "kind"},
		),
		IngestionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ingestion_duration_seconds",
				Help:    "End-to-end ingestion latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"entity"},
		),
		AggregateQueries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aggregate_queries_total",
				Help: "Aggregate report queries by report and source (store, cache, error).",
			},
			[]string{"report", "source"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.RowsProcessedTotal,
		m.RowsInsertedTotal,
		m.IngestionFailures,
		m.IngestionDuration,
		m.AggregateQueries,
	)

	return m
}

// ObserveRows records the validation split of one ingestion call.
func (m *Metrics) ObserveRows(entity string, accepted, rejected int) {
	if m == nil {
		return
	}
	m.RowsProcessedTotal.WithLabelValues(entity, "accepted").Add(float64(accepted))
	m.RowsProcessedTotal.WithLabelValues(entity, "rejected").Add(float64(rejected))
}

func (m *Metrics) ObserveInserted(entity string, rows int64) {
	if m == nil {
		return
	}
	m.RowsInsertedTotal.WithLabelValues(entity).Add(float64(rows))
}

func (m *Metrics) ObserveFailure(entity, kind string) {
	if m == nil {
		return
	}
	m.IngestionFailures.WithLabelValues(entity, kind).Inc()
}

func (m *Metrics) ObserveDuration(entity string, seconds float64) {
	if m == nil {
		return
	}
	m.IngestionDuration.WithLabelValues(entity).Observe(seconds)
}

func (m *Metrics) ObserveAggregate(report, source string) {
	if m == nil {
		return
	}
	m.AggregateQueries.WithLabelValues(report, source).Inc()
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
