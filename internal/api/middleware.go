package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/fer/internal/observability"
)

// multipartOverhead leaves room for the text fields and part headers
// around the photo itself.
const multipartOverhead = 1 << 20

// LoggingMiddleware logs each request with slog.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		// Route pattern, not raw path, to keep metric cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", duration.String(),
			"ip", c.ClientIP(),
		)

		observability.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(status),
		).Observe(duration.Seconds())
	}
}

// BodyLimitMiddleware caps request bodies at maxUploadBytes plus form overhead.
func BodyLimitMiddleware(maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxUploadBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+multipartOverhead)
		}
		c.Next()
	}
}
