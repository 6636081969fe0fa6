package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-hub/config"
	"resume-hub/internal/delivery/http/middleware"
	"resume-hub/internal/delivery/http/response"
	"resume-hub/internal/domain"
	"resume-hub/pkg/apperror"
	"resume-hub/pkg/logger"
	"resume-hub/pkg/security"
)

type AuthHandler struct {
	authUC    domain.AuthUsecase
	tracker   *security.LoginTracker
	secLogger *security.SecurityLogger
	cfg       *config.Config
}

type UserResponse struct {
	User *domain.User `json:"user"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, tracker *security.LoginTracker, secLogger *security.SecurityLogger, strict gin.HandlerFunc, cfg *config.Config) {
	handler := &AuthHandler{
		authUC:    authUC,
		tracker:   tracker,
		secLogger: secLogger,
		cfg:       cfg,
	}

	publicAuth := public.Group("/auth")
	publicAuth.Use(strict)
	{
		publicAuth.POST("/signup", handler.Signup)
		publicAuth.POST("/login", handler.Login)
	}
	public.POST("/auth/logout", handler.Logout)

	protected.GET("/auth/me", handler.Me)
}

// Signup godoc
// @Summary      Register a user
// @Description  Creates a candidate or recruiter account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signup  body      domain.SignupRequest  true  "Signup details"
// @Success      201     {object}  UserResponse
// @Failure      400     {object}  response.ErrorBody
// @Failure      409     {object}  response.ErrorBody
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}

	user, err := h.authUC.Signup(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	h.secLogger.LogSignup(c.Request.Context(), user.ID, string(user.Role), c.ClientIP(), response.RequestID(c))
	response.JSON(c, http.StatusCreated, UserResponse{User: user})
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges email and password for a bearer access token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginRequest  true  "Credentials"
// @Success      200    {object}  LoginResponse
// @Failure      400    {object}  response.ErrorBody
// @Failure      401    {object}  response.ErrorBody
// @Failure      429    {object}  response.ErrorBody
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.Validation("Invalid request body"))
		return
	}

	ctx := c.Request.Context()
	email := domain.NormalizeEmail(req.Email)
	ip := c.ClientIP()
	userAgent := c.GetHeader("User-Agent")
	requestID := response.RequestID(c)

	blocked, err := h.tracker.IsBlocked(ctx, email, ip)
	if err != nil {
		logger.Log.Warn("Login tracker unavailable", "request_id", requestID, "error", err)
	}
	if blocked {
		h.secLogger.LogLoginBlocked(ctx, email, ip, userAgent, requestID)
		c.Error(apperror.TooManyRequests("Too many failed login attempts. Please try again later."))
		return
	}

	user, token, err := h.authUC.Login(ctx, req)
	if err != nil {
		if apperror.Is(err, apperror.KindAuth) {
			if _, _, trackErr := h.tracker.RecordFailedAttempt(ctx, email, ip, userAgent, requestID); trackErr != nil {
				logger.Log.Warn("Failed to record login attempt", "request_id", requestID, "error", trackErr)
			}
		}
		c.Error(err)
		return
	}

	if err := h.tracker.ClearAttempts(ctx, email, ip); err != nil {
		logger.Log.Warn("Failed to clear login attempts", "request_id", requestID, "error", err)
	}
	h.secLogger.LogLoginSuccess(ctx, email, ip, userAgent, requestID)

	// browser clients authenticate with the cookie, API clients with the returned token
	secure := h.cfg.IsProduction()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, token, int(h.cfg.JWTTTL.Seconds()), "/", "", secure, true)
	if _, err := middleware.SetCSRFCookie(c, secure); err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	response.JSON(c, http.StatusOK, LoginResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the auth and CSRF cookies. Bearer tokens stay valid until they expire.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.MessageBody
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	secure := h.cfg.IsProduction()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", secure, true)
	c.SetCookie(middleware.CSRFTokenCookieName, "", -1, "/", "", secure, false)

	h.secLogger.LogLogout(c.Request.Context(), c.ClientIP(), response.RequestID(c))
	response.Message(c, http.StatusOK, "Logged out")
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserResponse
// @Failure      401  {object}  response.ErrorBody
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p, _ := domain.PrincipalFromContext(c.Request.Context())
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), p.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, UserResponse{User: user})
}
