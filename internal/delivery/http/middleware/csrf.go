package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-hub/internal/delivery/http/response"
	"resume-hub/pkg/apperror"
	"resume-hub/pkg/security"
)

const (
	// CSRFTokenCookieName is the name of the cookie that stores the CSRF token
	CSRFTokenCookieName = "csrf_token"
	// CSRFTokenHeaderName is the name of the header that must contain the CSRF token
	CSRFTokenHeaderName = "X-CSRF-Token"
	// CSRFTokenLength is the length of the generated token in bytes (32 bytes = 64 hex chars)
	CSRFTokenLength = 32
	// CSRFTokenExpiry is how long the token is valid
	CSRFTokenExpiry = 24 * time.Hour

	// AuthCookieName carries the access token for browser clients.
	AuthCookieName = "auth_token"
)

// generateCSRFToken creates a cryptographically secure random token
func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// SetCSRFCookie issues a fresh token readable by the frontend (not HttpOnly).
func SetCSRFCookie(c *gin.Context, secure bool) (string, error) {
	token, err := generateCSRFToken()
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CSRFTokenCookieName, token, int(CSRFTokenExpiry.Seconds()), "/", "", secure, false)
	return token, nil
}

// CSRFMiddleware implements the double-submit cookie pattern for requests
// authenticated by the auth_token cookie. Mutating requests must echo the
// csrf_token cookie in the X-CSRF-Token header.
//
// Requests carrying an Authorization header are not checked: browsers never
// attach that header on their own.
func CSRFMiddleware(secLogger *security.SecurityLogger, secure bool) gin.HandlerFunc {
	if secLogger == nil {
		secLogger = security.DefaultLogger()
	}

	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}
		if authCookie, err := c.Cookie(AuthCookieName); err != nil || authCookie == "" {
			c.Next()
			return
		}

		csrfCookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || csrfCookie == "" {
			csrfCookie, err = SetCSRFCookie(c, secure)
			if err != nil {
				c.Error(apperror.Internal(err))
				c.Abort()
				return
			}
		}

		// For safe methods, no validation needed
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		reason := ""
		switch {
		case headerToken == "":
			reason = "Missing CSRF token"
		case subtle.ConstantTimeCompare([]byte(headerToken), []byte(csrfCookie)) != 1:
			reason = "Invalid CSRF token"
		}
		if reason != "" {
			secLogger.LogCSRFViolation(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), response.RequestID(c), c.FullPath(), reason)
			c.Error(apperror.Forbidden(reason))
			c.Abort()
			return
		}

		c.Next()
	}
}
