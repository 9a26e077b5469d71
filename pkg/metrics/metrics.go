// Package metrics exposes the Prometheus registry used by the client library.
// Metrics are defined in their own packages (client, cache, ratelimit,
// pagination, entity) via promauto; this package documents them and serves
// them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client library.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - rbx_requests_total{host, status} (Counter)
//   - rbx_request_duration_seconds{host} (Histogram)
//   - rbx_errors_total{class} (Counter): client, server, rate_limit, csrf, network
//
// Retry Metrics (pkg/client):
//   - rbx_retries_total{error_class} (Counter)
//   - rbx_retry_backoff_seconds{error_class} (Histogram)
//   - rbx_retry_exhausted_total{error_class} (Counter)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - rbx_rate_limited_total (Counter): HTTP 429 responses
//   - rbx_rate_limit_consecutive (Gauge)
//   - rbx_rate_limit_wait_seconds_total (Counter)
//
// Cache Metrics (pkg/cache):
//   - rbx_session_cache_hits_total{bucket} (Counter)
//   - rbx_session_cache_misses_total{bucket} (Counter)
//   - rbx_session_cache_errors_total{operation} (Counter): unknown buckets
//   - rbx_response_cache_hits_total (Counter)
//   - rbx_response_cache_misses_total (Counter)
//   - rbx_response_cache_size_bytes (Gauge)
//   - rbx_response_cache_errors_total{operation} (Counter)
//
// Pagination Metrics (pkg/pagination):
//   - rbx_pages_fetched_total (Counter)
//   - rbx_page_items_total (Counter)
//
// Reference Metrics (pkg/entity):
//   - rbx_reference_resolutions_total{parent, mode} (Counter): mode is partial or fetch
//
// Example Prometheus Queries:
//
//   # Session cache hit rate by bucket
//   sum by (bucket) (rate(rbx_session_cache_hits_total[5m])) /
//   (sum by (bucket) (rate(rbx_session_cache_hits_total[5m])) + sum by (bucket) (rate(rbx_session_cache_misses_total[5m])))
//
//   # Share of references that cost a request
//   sum(rate(rbx_reference_resolutions_total{mode="fetch"}[5m])) /
//   sum(rate(rbx_reference_resolutions_total[5m]))
//
//   # Rate limited requests per minute
//   rate(rbx_rate_limited_total[1m]) * 60
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(rbx_request_duration_seconds_bucket[5m]))
