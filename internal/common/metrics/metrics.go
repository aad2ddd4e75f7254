package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriwise_api_requests_total",
			Help: "Total number of calls to the recommendation service",
		},
		[]string{"operation", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agriwise_api_request_duration_seconds",
			Help:    "Round-trip time of calls to the recommendation service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	SubmissionsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agriwise_submissions_in_flight",
			Help: "Number of form submissions currently awaiting a response",
		},
		[]string{"form"},
	)

	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriwise_query_state_transitions_total",
			Help: "Query state machine transitions by target state",
		},
		[]string{"form", "state"},
	)

	StaleResponsesDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriwise_stale_responses_discarded_total",
			Help: "Responses dropped because a newer submission superseded them",
		},
		[]string{"form"},
	)

	ClassifiedResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriwise_classified_results_total",
			Help: "Classified results by kind and tier",
		},
		[]string{"kind", "tier"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriwise_cache_lookups_total",
			Help: "Catalog cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
