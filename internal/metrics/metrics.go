// Package metrics provides Prometheus metrics for the CardPulse backend.
// Scrape these at /metrics for dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpulse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardpulse_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Upstream API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpulse_upstream_requests_total",
			Help: "Upstream API requests by service and result",
		},
		[]string{"service", "result"}, // service: "pokemontcg" or "exchangerate", result: "success" or "error"
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardpulse_upstream_request_duration_seconds",
			Help:    "Upstream API call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service"},
	)

	CurrencyRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardpulse_currency_retries_total",
			Help: "Exchange rate fetch attempts beyond the first",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpulse_cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpulse_cache_misses_total",
			Help: "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	// OCR Metrics
	OCRRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardpulse_ocr_requests_total",
			Help: "Total number of card image analysis requests",
		},
		[]string{"result"}, // "success", "not_card", "failed"
	)

	OCRProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardpulse_ocr_processing_duration_seconds",
			Help:    "Time taken to preprocess and OCR an uploaded image",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)

	// Watchlist / Collection Metrics
	WatchlistItemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardpulse_watchlist_items_total",
			Help: "Total number of watchlist entries across all users",
		},
	)

	SharedCollectionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardpulse_shared_collections_total",
			Help: "Number of users with a published collection",
		},
	)

	SharedCollectionsValueUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardpulse_shared_collections_value_usd",
			Help: "Combined value of all published collections in USD",
		},
	)
)
