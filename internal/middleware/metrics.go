package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/metrics"
)

// Metrics creates a Gin middleware recording per-route request latency.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// Unmatched routes (404s) collapse into one series.
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
