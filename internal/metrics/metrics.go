package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration observes latency per route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// SettlementsTotal counts transactions reaching a terminal status.
	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_settlements_total",
			Help: "Transactions settled to a terminal status.",
		},
		[]string{"type", "status", "reason"},
	)

	// GatewayDispatchRetries counts retried gateway dispatch attempts.
	GatewayDispatchRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_gateway_dispatch_retries_total",
			Help: "Gateway dispatch attempts that had to be retried.",
		},
	)

	// UnreconciledEventsTotal counts gateway notifications that could not be
	// matched to exactly one pending ledger row.
	UnreconciledEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_unreconciled_events_total",
			Help: "Gateway notifications requiring manual reconciliation.",
		},
	)

	// WorkerQueueDepth tracks the settlement job queue.
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current settlement worker queue depth.",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

// Init registers all collectors. Call once at startup.
func Init() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		SettlementsTotal,
		GatewayDispatchRetries,
		UnreconciledEventsTotal,
		WorkerQueueDepth,
	)
}
