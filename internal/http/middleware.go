// internal/http/middleware.go
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/common/metrics"
	"github.com/SOL-ICT/recruitment-core/internal/common/observability"
)

// RequestLogger logs one line per request with latency and status.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request completed", fields)
		} else {
			log.Info("request completed", fields)
		}
	}
}

// Recovery converts panics into 500 responses instead of dropping the
// connection.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", map[string]interface{}{
					"panic": r,
					"path":  c.FullPath(),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{"code": "INTERNAL_ERROR", "message": "internal server error"},
				})
			}
		}()
		c.Next()
	}
}

// Timing records the request duration histogram keyed by route and
// mirrors the measurement into the otel meter. obs may be nil in tests.
func Timing(obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		op := c.Request.Method + " " + route
		elapsed := time.Since(start)

		metrics.OperationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
		if obs != nil {
			status := "ok"
			if c.Writer.Status() >= http.StatusBadRequest {
				status = "error"
			}
			obs.RecordOperation(c.Request.Context(), op, status)
			obs.RecordOperationDuration(c.Request.Context(), op, elapsed)
		}
	}
}
