// Package metrics provides Prometheus instrumentation for the toolkit.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ToolCallsTotal counts MCP tool invocations by tool name and outcome.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdk",
			Name:      "tool_calls_total",
			Help:      "Total MCP tool calls by tool name and outcome (ok, error).",
		},
		[]string{"tool", "outcome"},
	)

	// ToolCallDuration observes tool call latency by tool name.
	ToolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wdk",
			Name:      "tool_call_duration_seconds",
			Help:      "MCP tool call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// AmountParseFailures counts rejected amount strings by error code.
	AmountParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdk",
			Name:      "amount_parse_failures_total",
			Help:      "Total amount strings rejected by the codec, by error code.",
		},
		[]string{"code"},
	)

	// UpstreamRequestsTotal counts requests to upstream services by outcome.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdk",
			Name:      "upstream_requests_total",
			Help:      "Total requests to upstream services (indexer, pricing, rpc) by outcome.",
		},
		[]string{"upstream", "outcome"},
	)

	// UpstreamRequestDuration observes upstream request latency.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wdk",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"upstream"},
	)

	// JournalEntriesTotal counts journal entries recorded by kind.
	JournalEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdk",
			Name:      "journal_entries_total",
			Help:      "Total journal entries recorded by kind (transfer, swap).",
		},
		[]string{"kind"},
	)

	// JournalPendingEntries tracks entries awaiting confirmation.
	JournalPendingEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wdk",
			Name:      "journal_pending_entries",
			Help:      "Number of journal entries currently awaiting confirmation.",
		},
	)

	// ConfirmationsTotal counts watcher resolutions by final status.
	ConfirmationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdk",
			Name:      "confirmations_total",
			Help:      "Total transactions resolved by the watcher, by final status.",
		},
		[]string{"status"},
	)

	// PriceCacheHits counts price lookups served from cache.
	PriceCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wdk",
		Name:      "price_cache_hits_total",
		Help:      "Total price lookups served from the cache.",
	})

	// PriceCacheMisses counts price lookups that went to the upstream.
	PriceCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wdk",
		Name:      "price_cache_misses_total",
		Help:      "Total price lookups that missed the cache.",
	})

	// HTTPRequestsTotal counts admin HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wdk",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes admin HTTP request latency.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wdk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wdk", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wdk", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wdk", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// DBWaitCount tracks the total number of connections waited for.
	DBWaitCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wdk", Name: "db_wait_count_total",
		Help: "Total number of connections waited for.",
	})
	// DBWaitDuration tracks total time waited for connections.
	DBWaitDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wdk", Name: "db_wait_duration_seconds_total",
		Help: "Total time waited for connections in seconds.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wdk", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		ToolCallsTotal,
		ToolCallDuration,
		AmountParseFailures,
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		JournalEntriesTotal,
		JournalPendingEntries,
		ConfirmationsTotal,
		PriceCacheHits,
		PriceCacheMisses,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		DBWaitCount,
		DBWaitDuration,
		GoroutineCount,
	)
}

// ObserveToolCall records one tool invocation with its outcome and duration.
func ObserveToolCall(tool string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
	ToolCallDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveUpstream records one upstream request with its outcome and duration.
func ObserveUpstream(upstream string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(upstream, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(upstream).Observe(elapsed.Seconds())
}

// StartDBStatsCollector periodically samples sql.DBStats and runtime goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			DBWaitCount.Set(float64(stats.WaitCount))
			DBWaitDuration.Set(stats.WaitDuration.Seconds())
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
