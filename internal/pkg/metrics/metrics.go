package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatches counts single-recipient dispatches by audit status (sent|blocked_user_preference|failed).
	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_dispatch_total",
			Help: "Total number of notification dispatch attempts",
		},
		[]string{"status"},
	)

	// PushDeliveries counts push relay outcomes (delivered|no_token|lookup_error|relay_error|disabled).
	PushDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_push_deliveries_total",
			Help: "Total number of push relay delivery attempts",
		},
		[]string{"result"},
	)

	// AuditWriteFailures counts audit entries that could not be appended.
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_audit_write_failures_total",
			Help: "Total number of audit log append failures",
		},
	)

	// BulkRecipients observes the fan-out size of bulk dispatches.
	BulkRecipients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notify_bulk_dispatch_recipients",
			Help:    "Recipients per bulk dispatch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
