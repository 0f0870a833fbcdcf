package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankpredict_predictions_total",
			Help: "Total number of predictions served, by outcome",
		},
		[]string{"channel", "outcome"},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankpredict_prediction_failures_total",
			Help: "Total number of failed prediction requests, by error code",
		},
		[]string{"channel", "code"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bankpredict_prediction_duration_seconds",
			Help:    "Duration of transform and classifier calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
		},
		[]string{"channel"},
	)

	PredictionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bankpredict_prediction_cache_hits_total",
			Help: "Total number of predictions answered from the result cache",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bankpredict_http_requests_total",
			Help: "Total number of HTTP requests, by method and status",
		},
		[]string{"method", "status"},
	)

	ArtifactChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bankpredict_artifact_changes_total",
			Help: "Number of on-disk changes to the loaded model artifact since startup",
		},
	)
)
