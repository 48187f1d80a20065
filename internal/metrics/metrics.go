// Package metrics defines the Prometheus collectors for the debt ledger.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DebtCalculations counts full debt-map computations per scope kind
	// (profile or bill).
	DebtCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billy_debt_calculations_total",
		Help: "Number of debt map computations.",
	}, []string{"scope"})

	// Redistributions counts committed debt redistributions.
	Redistributions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billy_redistributions_total",
		Help: "Number of committed debt redistributions.",
	})

	// ActiveBills tracks live ephemeral bill sessions.
	ActiveBills = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "billy_active_bill_sessions",
		Help: "Number of live ephemeral bill sessions.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "billy_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// Middleware records request durations for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestDuration.WithLabelValues(
			c.Request.Method,
			path,
			statusLabel(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
