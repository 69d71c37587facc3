// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_requests_processed_total",
			Help: "Total number of natural-language filter requests processed",
		},
		[]string{"result"},
	)

	OperationsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_operations_applied_total",
			Help: "Total number of reconciliation operations applied",
		},
		[]string{"operation"},
	)

	ClarificationsRequested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filter_clarifications_requested_total",
			Help: "Total number of column-group clarification responses",
		},
	)

	IntentResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "filter_intent_resolution_duration_seconds",
			Help: "Duration of intent API calls in seconds",
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "filter_request_duration_seconds",
			Help: "Duration of request processing in seconds",
		},
		[]string{"result"},
	)
)
