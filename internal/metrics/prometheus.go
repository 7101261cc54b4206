// Package metrics exports service metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contextual"

// Search outcomes.
const (
	OutcomeIndexed  = "indexed"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// Classifier decision stages.
const (
	StageEmpty      = "empty"
	StageClassifier = "classifier"
	StageAnchor     = "anchor"
	StageNeutral    = "neutral"
	StageFailed     = "failed"
)

// Recorder owns a private registry. All methods are safe on a nil *Recorder,
// which records nothing.
type Recorder struct {
	registry *prometheus.Registry

	searches          *prometheus.CounterVec
	fallbackResults   prometheus.Counter
	indexWriteFailure prometheus.Counter
	classifications   *prometheus.CounterVec
	embeddingLatency  *prometheus.HistogramVec
	httpLatency       *prometheus.HistogramVec
}

// Config configures the recorder.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}
}

// New creates a Recorder and registers its collectors.
func New(cfg Config) *Recorder {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Recorder{registry: registry}

	r.searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Semantic searches by outcome",
		},
		[]string{"outcome"},
	)

	r.fallbackResults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "fallback_results_total",
			Help:      "Results obtained from the content provider fallback",
		},
	)

	r.indexWriteFailure = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "index_write_failures_total",
			Help:      "Lazy indexing upserts that failed",
		},
	)

	r.classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "decisions_total",
			Help:      "Context classifications by deciding stage",
		},
		[]string{"stage"},
	)

	r.embeddingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "latency_seconds",
			Help:      "Embedding provider latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"caller"},
	)

	r.httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"method", "route", "status"},
	)

	registry.MustRegister(
		r.searches,
		r.fallbackResults,
		r.indexWriteFailure,
		r.classifications,
		r.embeddingLatency,
		r.httpLatency,
	)

	return r
}

// Handler returns the /metrics HTTP handler.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordSearch counts a search by outcome.
func (r *Recorder) RecordSearch(outcome string, fallbackResults int) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(outcome).Inc()
	if fallbackResults > 0 {
		r.fallbackResults.Add(float64(fallbackResults))
	}
}

// RecordIndexWriteFailure counts a failed lazy-index upsert.
func (r *Recorder) RecordIndexWriteFailure() {
	if r == nil {
		return
	}
	r.indexWriteFailure.Inc()
}

// RecordClassification counts a classifier decision by stage.
func (r *Recorder) RecordClassification(stage string) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(stage).Inc()
}

// ObserveEmbedding records provider latency for caller ("search", "classify", "anchors").
func (r *Recorder) ObserveEmbedding(caller string, d time.Duration) {
	if r == nil {
		return
	}
	r.embeddingLatency.WithLabelValues(caller).Observe(d.Seconds())
}

// ObserveHTTP records one HTTP request.
func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpLatency.WithLabelValues(method, route, statusLabel(status)).Observe(d.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
