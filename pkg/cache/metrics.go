package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionCacheHits tracks session cache hits by bucket
	SessionCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbx_session_cache_hits_total",
			Help: "Total number of session cache hits",
		},
		[]string{"bucket"},
	)

	// SessionCacheMisses tracks session cache misses by bucket
	SessionCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbx_session_cache_misses_total",
			Help: "Total number of session cache misses",
		},
		[]string{"bucket"},
	)

	// SessionCacheErrors tracks lookups against unknown buckets
	SessionCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbx_session_cache_errors_total",
			Help: "Total number of session cache operations against unknown buckets",
		},
		[]string{"operation"}, // "get", "set"
	)

	// ResponseCacheHits tracks response cache hits
	ResponseCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbx_response_cache_hits_total",
			Help: "Total number of HTTP response cache hits",
		},
	)

	// ResponseCacheMisses tracks response cache misses
	ResponseCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbx_response_cache_misses_total",
			Help: "Total number of HTTP response cache misses",
		},
	)

	// ResponseCacheSize tracks bytes written to the response cache
	ResponseCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rbx_response_cache_size_bytes",
			Help: "Bytes written to the HTTP response cache",
		},
	)

	// ResponseCacheErrors tracks response cache operation errors
	ResponseCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbx_response_cache_errors_total",
			Help: "Total number of response cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
