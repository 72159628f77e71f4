package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dnounce",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dnounce",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	httpTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dnounce",
			Name:      "http_request_timeouts_total",
			Help:      "Requests cut off by the timeout middleware",
		},
		[]string{"route"},
	)

	stageViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dnounce",
			Name:      "lifecycle_classifications_total",
			Help:      "Lifecycle views served by stage",
		},
		[]string{"stage"},
	)
)

// ObserveStage counts one lifecycle view served in stage.
func ObserveStage(stage string) {
	stageViews.WithLabelValues(stage).Inc()
}
