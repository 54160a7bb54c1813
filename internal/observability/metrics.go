// Package observability holds Prometheus collectors and OpenTelemetry setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EngagementOperations counts ledger mutations by operation and outcome
	// (applied, noop, rejected, failed).
	EngagementOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_engagement_operations_total",
		Help: "Total engagement ledger operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// ContactRequests counts contact submissions by outcome.
	ContactRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_contact_requests_total",
		Help: "Total contact request submissions by outcome",
	}, []string{"outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketBackpressureDrops counts notification frames dropped because a client was too slow.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// Outcome labels for EngagementOperations and ContactRequests.
const (
	OutcomeApplied  = "applied"
	OutcomeNoop     = "noop"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
