// Package metrics defines Prometheus metrics for cartsync.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cartsync"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 when the last liveness probe succeeded.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 when the last readiness probe succeeded.",
	})
)

// Synchronization engine metrics.
var (
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Cart mutations by operation and outcome kind.",
	}, []string{"op", "outcome"})

	MutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mutation_duration_seconds",
		Help:      "Time from lock to unlock of one cart mutation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	MutationsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mutations_in_flight",
		Help:      "1 while a cart mutation is outstanding.",
	})

	RemoveClicksDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remove_clicks_dropped_total",
		Help:      "Remove clicks dropped because a mutation was in flight.",
	})

	QuantityEditsCoalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quantity_edits_coalesced_total",
		Help:      "Quantity edits that replaced a pending debounce.",
	})

	QuantityEditsDeferredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quantity_edits_deferred_total",
		Help:      "Debounce expiries re-armed because a mutation was in flight.",
	})

	LockStateRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lock_state_renders_total",
		Help:      "Lock-state renders by resulting state.",
	}, []string{"state"})

	WatchdogRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watchdog_runs_total",
		Help:      "Scheduled lock-state refreshes.",
	})
)

// Gateway metrics.
var (
	GatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Duration of cart API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op", "status"})

	GatewayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_errors_total",
		Help:      "Cart API requests that failed before a response was received.",
	}, []string{"op"})
)

// Event bridge metrics.
var (
	BridgeEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bridge_events_total",
		Help:      "Events published on the bridge by kind.",
	}, []string{"kind"})

	BridgeEventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bridge_events_dropped_total",
		Help:      "Events dropped by slow stream subscribers.",
	}, []string{"kind"})

	WebhookFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_failures_total",
		Help:      "Total number of event webhook send failures.",
	})
)
