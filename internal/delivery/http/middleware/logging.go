package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"resume-hub/internal/delivery/http/response"
	"resume-hub/internal/domain"
	"resume-hub/pkg/logger"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", response.RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if p, ok := domain.PrincipalFromContext(c.Request.Context()); ok {
			attrs = append(attrs, "user_id", p.UserID, "role", string(p.Role))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.Log.Log(c.Request.Context(), level, "http request", attrs...)
	}
}
