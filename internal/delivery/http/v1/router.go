package v1

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"resume-hub/config"
	"resume-hub/internal/delivery/http/middleware"
	"resume-hub/internal/domain"
	"resume-hub/internal/usecase"
	"resume-hub/pkg/security"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	ResumeUC     domain.ResumeUsecase
	HealthUC     usecase.HealthUsecase
	Tokens       middleware.TokenVerifier
	RateLimiter  *middleware.RateLimiter
	LoginTracker *security.LoginTracker
	SecLogger    *security.SecurityLogger
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	cfg := deps.Config
	window := cfg.RateLimitWindow()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler(deps.SecLogger))
	r.Use(deps.RateLimiter.Middleware(middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	NewHealthHandler(r, deps.HealthUC)

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := r.Group("")
	protected.Use(middleware.CSRFMiddleware(deps.SecLogger, cfg.IsProduction()))
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC))

	strict := deps.RateLimiter.Middleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window))
	NewAuthHandler(&r.RouterGroup, protected, deps.AuthUC, deps.LoginTracker, deps.SecLogger, strict, cfg)
	NewResumeHandler(protected, deps.ResumeUC)
	NewSearchHandler(protected, deps.ResumeUC, cfg.SearchDefaultPageSize, deps.SecLogger)

	return r
}
