// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "social_insights"

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Analytics pipeline
	Snapshots        *prometheus.CounterVec
	SnapshotDuration prometheus.Histogram
	SourceFailures   prometheus.Counter
	CacheLookups     *prometheus.CounterVec

	// Collaborators
	AssistantRequests *prometheus.CounterVec
	SyncedPosts       *prometheus.CounterVec
	ChangeEvents      prometheus.Counter
}

// New registers every collector on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Computed analytics snapshots by source status.",
		}, []string{"status"}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Time to fetch posts and compute a snapshot.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		SourceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Record source fetches that failed after retries.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_lookups_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		AssistantRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_requests_total",
			Help:      "Assistant questions by outcome.",
		}, []string{"outcome"}),
		SyncedPosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synced_posts_total",
			Help:      "Posts imported from external sources.",
		}, []string{"source"}),
		ChangeEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "Change notifications received.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.Snapshots,
		m.SnapshotDuration,
		m.SourceFailures,
		m.CacheLookups,
		m.AssistantRequests,
		m.SyncedPosts,
		m.ChangeEvents,
	)

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

func (m *Metrics) ObserveSnapshot(status string, took time.Duration) {
	if m == nil {
		return
	}
	m.Snapshots.WithLabelValues(status).Inc()
	m.SnapshotDuration.Observe(took.Seconds())
}

func (m *Metrics) IncSourceFailure() {
	if m == nil {
		return
	}
	m.SourceFailures.Inc()
}

// ObserveCache records a lookup as "hit" or "miss".
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAssistant(outcome string) {
	if m == nil {
		return
	}
	m.AssistantRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddSynced(source string, n int) {
	if m == nil {
		return
	}
	m.SyncedPosts.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) IncChangeEvent() {
	if m == nil {
		return
	}
	m.ChangeEvents.Inc()
}
