// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for one collection run. Each
// Metrics owns its registry so several can coexist (tests, repeated runs).
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// UpstreamRequests counts HTTP requests by upstream and outcome
	// (ok, http_error, transport_error).
	UpstreamRequests *prometheus.CounterVec

	// UpstreamDuration observes request latency in seconds by upstream.
	UpstreamDuration *prometheus.HistogramVec

	// StageFailures counts degraded stages (listing, detail, metadata, mentions).
	StageFailures *prometheus.CounterVec

	// IdentifiersProcessed counts identifiers whose works were listed.
	IdentifiersProcessed prometheus.Counter

	// IdentifiersSkipped counts identifiers dropped after a listing failure.
	IdentifiersSkipped prometheus.Counter

	// RowsEmitted counts output rows.
	RowsEmitted prometheus.Counter

	// MentionPages counts Event Data pages fetched.
	MentionPages prometheus.Counter

	// CacheLookups counts cache lookups by kind and result (hit, miss).
	CacheLookups *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "HTTP requests sent to upstream APIs",
		}, []string{"upstream", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream request latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"upstream"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stages that degraded to a default",
		}, []string{"stage"}),
		IdentifiersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_processed_total",
			Help:      "Identifiers whose works were listed",
		}),
		IdentifiersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identifiers_skipped_total",
			Help:      "Identifiers skipped after a listing failure",
		}),
		RowsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_emitted_total",
			Help:      "Output rows assembled",
		}),
		MentionPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mention_pages_total",
			Help:      "Event Data pages fetched",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "DOI cache lookups",
		}, []string{"kind", "result"}),
	}
	m.Registry.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.StageFailures,
		m.IdentifiersProcessed,
		m.IdentifiersSkipped,
		m.RowsEmitted,
		m.MentionPages,
		m.CacheLookups,
	)
	return m
}

// RecordRequest records one upstream request.
func (m *Metrics) RecordRequest(upstream, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(upstream, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(upstream).Observe(seconds)
}

// RecordStageFailure records a stage that fell back to its default.
func (m *Metrics) RecordStageFailure(stage string) {
	if m == nil {
		return
	}
	m.StageFailures.WithLabelValues(stage).Inc()
}

// RecordIdentifier records an identifier as processed or skipped.
func (m *Metrics) RecordIdentifier(skipped bool) {
	if m == nil {
		return
	}
	if skipped {
		m.IdentifiersSkipped.Inc()
		return
	}
	m.IdentifiersProcessed.Inc()
}

// RecordRow records one emitted row.
func (m *Metrics) RecordRow() {
	if m == nil {
		return
	}
	m.RowsEmitted.Inc()
}

// RecordMentionPage records one Event Data page.
func (m *Metrics) RecordMentionPage() {
	if m == nil {
		return
	}
	m.MentionPages.Inc()
}

// RecordCacheLookup records a cache hit or miss for kind.
func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

// WriteTextfile writes all metrics in Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
