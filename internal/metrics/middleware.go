package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetricsMiddleware records request counts and latency per route
// template, so /licenses/:id/extend is one series regardless of id.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		method := c.Request.Method
		statusCode := strconv.Itoa(c.Writer.Status())

		HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
		HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
