// Package middleware holds the gin middleware shared by all HTTP routes.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfswap/shelfswap/internal/infrastructure/monitoring/logging"
)

// MetricsCollector is the subset of the metrics port the middleware uses.
type MetricsCollector interface {
	IncCounter(name string, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// RequestLogging logs every request after completion and records HTTP
// metrics. Paths are recorded by route template, not raw URL, to bound
// metric cardinality.
func RequestLogging(log logging.Logger, metrics MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		if metrics != nil {
			labels := map[string]string{
				"method": c.Request.Method,
				"path":   route,
				"status": strconv.Itoa(status),
			}
			metrics.IncCounter("http_requests_total", labels)
			metrics.ObserveHistogram("http_request_duration_seconds", elapsed.Seconds(),
				map[string]string{"method": c.Request.Method, "path": route})
		}

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
			logging.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request handled", fields...)
		}
	}
}

// Recovery converts panics into 500 responses with a logged stack reference
// instead of tearing down the connection.
func Recovery(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered in handler",
					logging.String("path", c.Request.URL.Path),
					logging.Any("panic", r),
				)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    "COMMON_001",
					"message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
