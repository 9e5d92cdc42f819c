package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	postOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_operations_total",
			Help: "Total number of post service operations by result",
		},
		[]string{"operation", "result"},
	)

	postOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "post_operation_duration_seconds",
			Help:    "Duration of post service operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	postsCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_cache_requests_total",
			Help: "Post list cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordPostOperation counts one post service call. result is "ok" or an error kind.
func RecordPostOperation(operation, result string, duration time.Duration) {
	postOperationsTotal.WithLabelValues(operation, result).Inc()
	postOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordCacheLookup(outcome string) {
	postsCacheTotal.WithLabelValues(outcome).Inc()
}
