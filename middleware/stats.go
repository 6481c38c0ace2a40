package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/contentscore/stats"
)

// RequestObserver receives one call per finished request
type RequestObserver interface {
	ObserveRequest(route string, code int)
}

// Stats tracks visitors, latency and failures for every request, and
// reports the route template and status code to obs when it is non-nil.
func Stats(traffic *stats.Traffic, obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traffic.TrackVisitor(c.ClientIP())

		c.Next()

		status := c.Writer.Status()
		traffic.TrackRequest(time.Since(start), status >= 500)
		if obs != nil {
			obs.ObserveRequest(c.FullPath(), status)
		}
	}
}

// Logger writes one structured line per request
func Logger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey),
		)
	}
}
