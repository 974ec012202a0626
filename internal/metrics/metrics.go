package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptgrant_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adaptgrant_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	EvaluationsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptgrant_evaluations_total",
			Help: "Total number of eligibility evaluations computed",
		},
		[]string{"eligible"},
	)

	ReevaluationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptgrant_reevaluation_runs_total",
			Help: "Total number of re-evaluation runs",
		},
		[]string{"dry_run", "result"},
	)

	ReevaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "adaptgrant_reevaluation_duration_seconds",
			Help: "Duration of re-evaluation runs in seconds",
		},
	)

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptgrant_status_transitions_total",
			Help: "Total number of application status transitions",
		},
		[]string{"to"},
	)

	ScoreSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adaptgrant_score_submissions_total",
			Help: "Total number of evaluator score submissions",
		},
		[]string{"role"},
	)
)
