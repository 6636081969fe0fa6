package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-hub/internal/delivery/http/response"
	"resume-hub/internal/domain"
	"resume-hub/pkg/apperror"
	"resume-hub/pkg/logger"
	"resume-hub/pkg/security"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// Internal causes are logged and never sent to the client.
func ErrorHandler(secLogger *security.SecurityLogger) gin.HandlerFunc {
	if secLogger == nil {
		secLogger = security.DefaultLogger()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			logger.Log.Error("Unhandled error", "request_id", response.RequestID(c), "path", c.Request.URL.Path, "error", err)
			response.Error(c, http.StatusInternalServerError, apperror.KindInternal, "An unexpected error occurred. Please try again later.")
			return
		}

		switch appErr.Kind {
		case apperror.KindInternal, apperror.KindUnavailable:
			logger.Log.Error("Request failed", "request_id", response.RequestID(c), "path", c.Request.URL.Path, "kind", appErr.Kind, "error", appErr.Err)
		case apperror.KindForbidden, apperror.KindAuth:
			var userID string
			if p, ok := domain.PrincipalFromContext(c.Request.Context()); ok {
				userID = p.UserID
			}
			secLogger.LogAccessDenied(c.Request.Context(), appErr.Kind == apperror.KindForbidden,
				userID, c.ClientIP(), response.RequestID(c), c.FullPath(), appErr.Message)
		}

		response.Error(c, appErr.Code, appErr.Kind, appErr.Message)
	}
}
