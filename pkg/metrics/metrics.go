// Package metrics exposes the Prometheus registry and scrape handler used by
// the users client. Metrics are defined in their respective packages (client,
// cache) and registered via promauto, so this package only documents them
// and serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the users client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler serving every registered metric.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - users_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - users_cache_misses_total{layer} (Counter): Cache misses by layer
//   - users_cache_errors_total{layer, operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - users_api_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - users_api_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - users_api_errors_total{class} (Counter): Errors by class (client, server, timeout, network)
//
// Retry Metrics (pkg/client):
//   - users_api_retries_total{error_class} (Counter): Retry attempts by error class
//   - users_api_retry_exhausted_total{error_class} (Counter): Requests that exhausted max attempts
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(users_cache_hits_total[5m])) /
//   (sum(rate(users_cache_hits_total[5m])) + sum(rate(users_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(users_api_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(users_api_request_duration_seconds_bucket[5m]))
