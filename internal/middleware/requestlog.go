package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/monocle-dev/timetrack/internal/types"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "request_id"
)

// RequestLogger tags every request with an id and writes one access log line
// when it completes.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}
		c.Set(RequestIDKey, reqID)
		c.Header(RequestIDHeader, reqID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("request_id", reqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if user, ok := c.Get(types.ContextUserKey); ok {
			if u, ok := user.(AuthenticatedUser); ok {
				attrs = append(attrs, slog.Uint64("user_id", uint64(u.ID)))
			}
		}

		log.LogAttrs(c.Request.Context(), level, "request completed", attrs...)
	}
}
