package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for one pipeline run. Each Metrics
// value carries its own registry so tests can construct collectors freely.
type Metrics struct {
	registry *prometheus.Registry

	// Data plane
	LinesRead        prometheus.Counter
	LinesDistributed *prometheus.CounterVec
	LinesMerged      prometheus.Counter
	RecordsRejected  prometheus.Counter

	// Worker pool
	WorkersActive  prometheus.Gauge
	WorkerFailures prometheus.Counter

	// Run
	RunDuration prometheus.Histogram
}

// NewMetrics creates a metrics collector backed by a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		LinesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pipesort_lines_read_total",
				Help: "Total number of records consumed from the input stream",
			},
		),
		LinesDistributed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipesort_lines_distributed_total",
				Help: "Total number of records fanned out, per worker",
			},
			[]string{"worker"},
		),
		LinesMerged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pipesort_lines_merged_total",
				Help: "Total number of records emitted by the k-way merge",
			},
		),
		RecordsRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pipesort_records_rejected_total",
				Help: "Total number of records rejected for exceeding the length bound",
			},
		),

		WorkersActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipesort_workers_active",
				Help: "Number of worker processes currently running",
			},
		),
		WorkerFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pipesort_worker_failures_total",
				Help: "Total number of workers that exited abnormally",
			},
		),

		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipesort_run_duration_seconds",
				Help:    "Wall-clock duration of a full distribute-sort-merge run",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
		),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
