// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	// Pipeline metrics
	MessagesSeen      prometheus.Counter
	BaselinesInserted prometheus.Counter
	BaselinesRemoved  prometheus.Counter
	PipelineErrors    *prometheus.CounterVec

	// Resolver metrics
	ResolveLatency  prometheus.Histogram
	ResolveFailures prometheus.Counter

	// Render metrics
	CardsRendered  *prometheus.CounterVec
	RenderDuration prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pnl_bot"
	}

	return &Metrics{
		MessagesSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "messages_seen_total",
			Help:      "Total number of inbound chat messages inspected",
		}),
		BaselinesInserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "baselines_inserted_total",
			Help:      "Total number of baseline snapshots recorded",
		}),
		BaselinesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "baselines_removed_total",
			Help:      "Total number of baseline snapshots removed",
		}),
		PipelineErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Total number of pipeline errors by stage",
		}, []string{"stage"}),

		ResolveLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "latency_seconds",
			Help:      "Market data resolution latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ResolveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "failures_total",
			Help:      "Total number of market data resolution failures",
		}),

		CardsRendered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "cards_total",
			Help:      "Total number of PnL cards rendered by tier",
		}, []string{"tier"}),
		RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Card rendering duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMessageSeen increments the inbound message counter.
func RecordMessageSeen() {
	DefaultMetrics.MessagesSeen.Inc()
}

// RecordBaselineInserted increments the baseline insert counter.
func RecordBaselineInserted() {
	DefaultMetrics.BaselinesInserted.Inc()
}

// RecordBaselineRemoved increments the baseline removal counter.
func RecordBaselineRemoved() {
	DefaultMetrics.BaselinesRemoved.Inc()
}

// RecordPipelineError records a pipeline error for a stage.
func RecordPipelineError(stage string) {
	DefaultMetrics.PipelineErrors.WithLabelValues(stage).Inc()
}

// RecordResolve records one resolution attempt.
func RecordResolve(seconds float64, err error) {
	DefaultMetrics.ResolveLatency.Observe(seconds)
	if err != nil {
		DefaultMetrics.ResolveFailures.Inc()
	}
}

// RecordCardRendered records one rendered card.
func RecordCardRendered(tier string, seconds float64) {
	DefaultMetrics.CardsRendered.WithLabelValues(tier).Inc()
	DefaultMetrics.RenderDuration.Observe(seconds)
}
