package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"resume-hub/internal/domain"
	"resume-hub/pkg/apperror"
	"resume-hub/pkg/auth"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware resolves the bearer token (or auth_token cookie) into a
// domain.Principal on the request context. The role comes from the stored
// user record, not from the token.
func AuthMiddleware(tokens TokenVerifier, authUC domain.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Error(apperror.Unauthorized("Authorization header or auth_token cookie required"))
			c.Abort()
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			c.Error(apperror.Unauthorized("Invalid token"))
			c.Abort()
			return
		}

		var user *domain.User
		if claims.External {
			user, err = authUC.EnsureUserExists(c.Request.Context(), &domain.User{
				ID:    claims.Subject,
				Email: claims.Email,
				Role:  domain.Role(claims.Role),
			})
		} else {
			user, err = authUC.GetCurrentUser(c.Request.Context(), claims.Subject)
		}
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		principal := domain.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
		c.Request = c.Request.WithContext(domain.WithPrincipal(c.Request.Context(), principal))

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUserEmail), user.Email)
		c.Set(string(domain.KeyUserRole), string(user.Role))

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
		return ""
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

// RequireRole rejects callers whose role is not in roles. Usecases repeat the
// check; this guard keeps wrong-role traffic off the handlers.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := domain.PrincipalFromContext(c.Request.Context())
		if !ok {
			c.Error(apperror.Unauthorized("User not authenticated"))
			c.Abort()
			return
		}
		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		c.Error(apperror.Forbidden("This endpoint is not available for the " + string(p.Role) + " role"))
		c.Abort()
	}
}
