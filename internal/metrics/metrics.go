// Package metrics holds the Prometheus collectors reported by a session.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap/zapcore"
)

// Registry holds all session metrics on a private prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	QueriesTotal   *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	IndexSize      *prometheus.GaugeVec
	IgnoreSize     *prometheus.GaugeVec
	RebuildsTotal  *prometheus.CounterVec
	RebuildSeconds *prometheus.HistogramVec
	LogEntries     *prometheus.CounterVec
	LogErrors      prometheus.Counter
}

// NewRegistry creates and registers every collector.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	factory := promauto.With(r.registry)

	r.QueriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracknn_queries_total",
			Help: "Total number of nearest-neighbor queries",
		},
		[]string{"engine", "result"},
	)
	r.QueryDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracknn_query_duration_seconds",
			Help:    "Nearest-neighbor query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
		[]string{"engine"},
	)
	r.IndexSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tracknn_index_points",
			Help: "Number of distinct points in the active engine",
		},
		[]string{"engine"},
	)
	r.IgnoreSize = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tracknn_ignore_entries",
			Help: "Number of entries on the active engine's ignore list",
		},
		[]string{"engine"},
	)
	r.RebuildsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracknn_rebuilds_total",
			Help: "Total number of engine rebuilds",
		},
		[]string{"engine", "status"},
	)
	r.RebuildSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracknn_rebuild_duration_seconds",
			Help:    "Engine rebuild duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"engine"},
	)
	r.LogEntries = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracknn_log_entries_total",
			Help: "Total number of log entries by level",
		},
		[]string{"level"},
	)
	r.LogErrors = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "tracknn_log_errors_total",
			Help: "Total number of error log entries",
		},
	)
	return r
}

// ObserveQuery records one query.
func (r *Registry) ObserveQuery(engine string, elapsed time.Duration, found bool) {
	result := "hit"
	if !found {
		result = "empty"
	}
	r.QueriesTotal.WithLabelValues(engine, result).Inc()
	r.QueryDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// ObserveRebuild records one rebuild attempt.
func (r *Registry) ObserveRebuild(engine string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.RebuildsTotal.WithLabelValues(engine, status).Inc()
	if err == nil {
		r.RebuildSeconds.WithLabelValues(engine).Observe(elapsed.Seconds())
	}
}

// SetEngineState publishes the active engine's gauges.
func (r *Registry) SetEngineState(engine string, size, ignored int) {
	r.IndexSize.Reset()
	r.IgnoreSize.Reset()
	r.IndexSize.WithLabelValues(engine).Set(float64(size))
	r.IgnoreSize.WithLabelValues(engine).Set(float64(ignored))
}

// ObserveLogEntry counts one written log entry. It lets a Registry serve as
// a logging.EntryObserver.
func (r *Registry) ObserveLogEntry(level zapcore.Level) {
	r.LogEntries.WithLabelValues(level.String()).Inc()
	if level >= zapcore.ErrorLevel {
		r.LogErrors.Inc()
	}
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
