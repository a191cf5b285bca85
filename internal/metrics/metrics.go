// Package metrics defines the Prometheus instruments for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Broadcast core metrics
var (
	// BroadcastActiveConnections tracks currently registered stream connections.
	BroadcastActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_active_connections",
			Help: "Number of currently registered event stream connections",
		},
	)

	// BroadcastEventsPublished counts publish calls by event kind.
	BroadcastEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_events_published_total",
			Help: "Total events handed to the broadcaster by kind",
		},
		[]string{"kind"},
	)

	// BroadcastEventsDelivered counts successful per-connection deliveries.
	BroadcastEventsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_events_delivered_total",
			Help: "Total successful event deliveries across all connections",
		},
	)

	// BroadcastEventsSuppressed counts deliveries withheld by the authorization filter.
	BroadcastEventsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_events_suppressed_total",
			Help: "Total deliveries suppressed by the role/scope filter",
		},
	)

	// BroadcastDeliveryFailures counts write failures that evicted a connection.
	BroadcastDeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_delivery_failures_total",
			Help: "Total connection evictions caused by failed channel writes",
		},
	)

	// BroadcastReaperEvictions counts connections removed on heartbeat timeout.
	BroadcastReaperEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_reaper_evictions_total",
			Help: "Total connections reaped after missing their heartbeat deadline",
		},
	)

	// BroadcastPublishDuration tracks fan-out pass latency in seconds.
	BroadcastPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_publish_duration_seconds",
			Help:    "Duration of one publish fan-out pass",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)
)

// WebSocket transport metrics
var (
	// WebSocketPingFailures counts failed pings to stream clients.
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total WebSocket ping write failures",
		},
	)

	// WebSocketMessageSendDuration tracks message write latency in seconds.
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "Duration of WebSocket message sends",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
)

// Background job metrics
var (
	// StatsAggregationRuns counts aggregation runs by outcome.
	StatsAggregationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_aggregation_runs_total",
			Help: "Total daily stats aggregation runs by status",
		},
		[]string{"status"},
	)

	// StatsAggregationDuration tracks aggregation run latency in seconds.
	StatsAggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stats_aggregation_duration_seconds",
			Help:    "Duration of daily stats aggregation runs",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5},
		},
	)
)
