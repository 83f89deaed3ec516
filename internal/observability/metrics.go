// Package observability provides Prometheus metrics for the match pipeline.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Remote API metrics
	RemoteRequests      *prometheus.CounterVec
	RemoteLatency       *prometheus.HistogramVec
	RateLimiterTimeouts prometheus.Counter

	// Pipeline metrics
	StoreHits       prometheus.Counter
	MatchesFetched  prometheus.Counter
	MatchesDropped  *prometheus.CounterVec
	RecordsSaved    prometheus.Counter
	AggregationRuns *prometheus.CounterVec

	// Worker metrics
	JobsProcessed *prometheus.CounterVec

	registry prometheus.Gatherer
}

// NewMetrics creates a Metrics instance registered on reg. A nil reg uses a fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "matchstats"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		RemoteRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "riot",
			Name:      "requests_total",
			Help:      "Riot API requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		RemoteLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "riot",
			Name:      "request_duration_seconds",
			Help:      "Riot API request latency, excluding rate limiter wait",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		RateLimiterTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "riot",
			Name:      "rate_limiter_timeouts_total",
			Help:      "Requests abandoned because no local permit was available in time",
		}),
		StoreHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "store_hits_total",
			Help:      "Match records served from the store instead of the API",
		}),
		MatchesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "matches_fetched_total",
			Help:      "Matches fetched from the API and built into records",
		}),
		MatchesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "matches_dropped_total",
			Help:      "Fetched matches that produced no stored record",
		}, []string{"reason"}),
		RecordsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "records_saved_total",
			Help:      "Match records persisted",
		}),
		AggregationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "aggregations_total",
			Help:      "Aggregation requests by result",
		}, []string{"result"}),
		JobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "jobs_processed_total",
			Help:      "Refresh jobs handled by result",
		}, []string{"result"}),
		registry: reg,
	}
}

// ObserveRemote records one Riot API call.
func (m *Metrics) ObserveRemote(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RemoteRequests.WithLabelValues(endpoint, outcome).Inc()
	m.RemoteLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// RateLimiterTimeout counts a local permit timeout.
func (m *Metrics) RateLimiterTimeout() {
	if m == nil {
		return
	}
	m.RateLimiterTimeouts.Inc()
}

// PipelineRun records the outcome of one aggregation request.
func (m *Metrics) PipelineRun(storeHits, fetched, saved int, dropped map[string]int, err error) {
	if m == nil {
		return
	}
	m.StoreHits.Add(float64(storeHits))
	m.MatchesFetched.Add(float64(fetched))
	m.RecordsSaved.Add(float64(saved))
	for reason, n := range dropped {
		m.MatchesDropped.WithLabelValues(reason).Add(float64(n))
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.AggregationRuns.WithLabelValues(result).Inc()
}

// JobHandled records a worker job result.
func (m *Metrics) JobHandled(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.JobsProcessed.WithLabelValues(result).Inc()
}

// Handler returns an HTTP handler serving the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
