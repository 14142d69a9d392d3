// Package metrics declares the Prometheus collectors updated by the
// analysis pipeline and serves them over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "facettes"

var (
	// CacheRequests counts result cache lookups.
	// Labels: provider (semrush, google_suggest), result (hit, miss, error)
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "cache_requests_total",
		Help:      "Result cache lookups by provider and result",
	}, []string{"provider", "result"})

	// ProviderRequests counts outbound provider calls.
	// Labels: provider, outcome (ok, error)
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "provider_requests_total",
		Help:      "Outbound provider calls by outcome",
	}, []string{"provider", "outcome"})

	// ProviderLatency measures provider call duration, pacing excluded.
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "provider_latency_seconds",
		Help:      "Provider call latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"provider"})

	// PacingWait measures time spent blocked in the rate limiter.
	PacingWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "wait_seconds",
		Help:      "Time spent waiting for a pacing token",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 2},
	}, []string{"endpoint"})

	// FacetsScored counts scored facets and combinations.
	// Labels: level (simple, combination), decision (INDEX, NOINDEX)
	FacetsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "facets_scored_total",
		Help:      "Scored facets by level and decision",
	}, []string{"level", "decision"})

	// RunDuration measures complete analysis runs.
	// Labels: status (ok, error)
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "run_duration_seconds",
		Help:      "Duration of analysis runs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"status"})

	// CannibalisationAlerts counts emitted alerts.
	CannibalisationAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "cannibalisation_alerts_total",
		Help:      "Cannibalisation alerts emitted",
	})
)
