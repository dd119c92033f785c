package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BoardRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path"},
	)

	BoardRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	BoardRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	BoardMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_mutations_total",
			Help: "Total number of board mutations by kind",
		},
		[]string{"kind"},
	)

	ActiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "board_active_subscribers",
			Help: "Number of currently connected event subscribers",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_events_published_total",
			Help: "Total number of events published to the hub",
		},
		[]string{"type"},
	)

	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_events_dropped_total",
			Help: "Total number of events dropped (full queue or slow subscriber)",
		},
		[]string{"reason"},
	)

	PersistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_persistence_failures_total",
			Help: "Total number of failed snapshot saves",
		},
		[]string{"file"},
	)

	DomainErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_domain_errors_total",
			Help: "Total number of domain errors by category and code",
		},
		[]string{"category", "code", "status"},
	)

	RateLimitBlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_rate_limit_blocked_total",
			Help: "Total number of requests blocked by rate limiter",
		},
		[]string{"path"},
	)
)
