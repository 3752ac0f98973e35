package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"swap_mode", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_quote_duration_seconds",
			Help:    "Quote request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"swap_mode"},
	)

	QuoteCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_quote_cache_hits_total",
		Help: "Total number of quote cache hits",
	})

	QuoteCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_quote_cache_misses_total",
		Help: "Total number of quote cache misses",
	})

	QuoteCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_quote_cache_size",
		Help: "Current number of entries in quote cache",
	})

	QuotesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_quotes_expired_total",
		Help: "Total number of quotes purged by the expiry sweep",
	})

	ActiveQuotes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_active_quotes",
		Help: "Number of redeemable quotes currently held",
	})

	// Oracle metrics
	OracleCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_oracle_calls_total",
			Help: "Total number of oracle evaluation calls",
		},
		[]string{"swap_mode", "status"},
	)

	OracleCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_oracle_call_duration_seconds",
		Help:    "Single oracle call duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	CandidatesEvaluated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_candidates_evaluated",
		Help:    "Number of route candidates evaluated per quote request",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
	})

	CandidatesFailed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_candidates_failed",
		Help:    "Number of route candidates dropped per quote request",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
	})

	PriceImpact = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_price_impact_bps",
			Help:    "Price impact in basis points",
			Buckets: []float64{0, 10, 50, 100, 300, 500, 1000, 5000, 10000},
		},
		[]string{"severity"},
	)

	// Swap metrics
	SwapRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_swap_requests_total",
			Help: "Total number of swap transaction build requests",
		},
		[]string{"swap_mode", "status"},
	)

	SwapDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_swap_duration_seconds",
			Help:    "Swap transaction build duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"swap_mode"},
	)

	// Gas price cache metrics
	GasPriceRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gateway_gas_price_refreshes_total",
		Help: "Total number of gas price cache refreshes",
	})

	GasPriceWei = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_gas_price_wei",
		Help: "Last observed gas price in wei",
	})

	// Persistence metrics
	PersistenceWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_persistence_writes_total",
			Help: "Total number of persistence writes",
		},
		[]string{"bucket", "status"},
	)

	// Price feed metrics
	PriceFeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_price_feed_requests_total",
			Help: "Total number of USD price feed lookups",
		},
		[]string{"source", "status"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
