package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
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
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	projectIngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_ingestions_total",
			Help: "Total number of project create/update attempts",
		},
		[]string{"operation", "outcome"},
	)

	fileParseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "file_parse_failures_total",
			Help: "Total number of upload parse failures",
		},
		[]string{"file"},
	)

	reportCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_cache_hits_total",
			Help: "Project report cache lookups by result",
		},
		[]string{"hit"},
	)
)

// MetricsMiddleware collects Prometheus metrics for each HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordIngestion records the outcome of a project create/update.
func RecordIngestion(isUpdate bool, success bool) {
	operation := "create"
	if isUpdate {
		operation = "update"
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	projectIngestionsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordParseFailure records a rejected upload by file kind.
func RecordParseFailure(file string) {
	fileParseFailuresTotal.WithLabelValues(file).Inc()
}

// RecordReportCacheLookup records a report cache hit or miss.
func RecordReportCacheLookup(hit bool) {
	value := "false"
	if hit {
		value = "true"
	}
	reportCacheHitsTotal.WithLabelValues(value).Inc()
}
