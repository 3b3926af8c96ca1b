package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classifieds/internal/metrics"
	"classifieds/pkg/logger"
)

func RequestLogger(log logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestDuration.WithLabelValues(route, c.Request.Method, strconv.Itoa(statusCode)).Observe(latency.Seconds())

		log.Info("HTTP request",
			"client", ClientIdentity(c.Request),
			"method", c.Request.Method,
			"path", path,
			"status", statusCode,
			"latency", latency,
		)
	}
}
