package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobprep_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobprep_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobprep_completion_requests_total",
			Help: "Total number of completion provider calls.",
		},
		[]string{"model", "status"},
	)

	CompletionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobprep_completion_request_duration_seconds",
			Help:    "Completion provider call duration in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"model"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobprep_completion_tokens_total",
			Help: "Total tokens consumed by completion calls.",
		},
		[]string{"model", "direction"},
	)

	ImageRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobprep_image_requests_total",
			Help: "Total number of image provider calls.",
		},
		[]string{"model", "operation", "status"},
	)

	QuotaDenialsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobprep_quota_denials_total",
			Help: "Total number of billed actions denied by the daily quota gate.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CompletionRequestsTotal,
		CompletionRequestDuration,
		CompletionTokensTotal,
		ImageRequestsTotal,
		QuotaDenialsTotal,
	)
}
