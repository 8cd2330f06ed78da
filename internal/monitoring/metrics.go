package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgv_ledger_operations_total",
			Help: "Total combine and revert attempts",
		},
		[]string{"operation", "status"},
	)

	combineSources = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sgv_combine_sources",
			Help:    "Number of source vouchers per successful combine",
			Buckets: prometheus.LinearBuckets(2, 1, 8),
		},
	)

	artifactFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sgv_artifact_json_fallbacks_total",
			Help: "Artifacts written as JSON because the QR image could not be produced",
		},
	)

	inventorySearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgv_inventory_searches_total",
			Help: "Inventory searches by query mode",
		},
		[]string{"mode"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sgv_active_sessions",
			Help: "Current number of live sessions",
		},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)
)

// TrackLedgerOperation counts a combine or revert with its outcome.
func TrackLedgerOperation(operation, status string) {
	ledgerOperations.WithLabelValues(operation, status).Inc()
}

func TrackCombineSize(n int) {
	combineSources.Observe(float64(n))
}

func TrackArtifactFallback() {
	artifactFallbacks.Inc()
}

func TrackSearch(mode string) {
	inventorySearches.WithLabelValues(mode).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

// GinMiddleware records request durations per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
