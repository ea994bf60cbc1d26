// Package metrics exposes Prometheus instrumentation for pipeline analysis.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for pipeline_analyses_total.
const (
	OutcomeDAG     = "dag"
	OutcomeCyclic  = "cyclic"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics owns a private registry so that several apps (and tests) never
// collide on the process-wide default registerer.
type Metrics struct {
	registry *prometheus.Registry

	analyses  *prometheus.CounterVec
	duration  prometheus.Histogram
	graphSize *prometheus.HistogramVec
}

// New registers the analysis collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_analyses_total",
			Help: "Pipeline analysis requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_analysis_duration_seconds",
			Help:    "Time spent building the graph and checking it for cycles.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}),
		graphSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pipeline_graph_size",
			Help:    "Number of nodes and edges in analysed pipelines.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9), // 1 to 65536
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.analyses,
		m.duration,
		m.graphSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAnalysis records a completed analysis.
func (m *Metrics) ObserveAnalysis(nodes, edges int, isDAG bool, took time.Duration) {
	outcome := OutcomeDAG
	if !isDAG {
		outcome = OutcomeCyclic
	}
	m.analyses.WithLabelValues(outcome).Inc()
	m.duration.Observe(took.Seconds())
	m.graphSize.WithLabelValues("nodes").Observe(float64(nodes))
	m.graphSize.WithLabelValues("edges").Observe(float64(edges))
}

// ObserveFailure records a request rejected with outcome OutcomeInvalid or OutcomeError.
func (m *Metrics) ObserveFailure(outcome string) {
	m.analyses.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
