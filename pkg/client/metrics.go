package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for users API requests.
var (
	usersAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_api_requests_total",
		Help: "Total users API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	usersAPIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "users_api_request_duration_seconds",
		Help:    "Users API request duration in seconds by endpoint, retries included",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	usersAPIErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_api_errors_total",
		Help: "Total users API errors by class",
	}, []string{"class"})

	usersAPIRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_api_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	usersAPIRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_api_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)
