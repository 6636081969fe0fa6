package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"resume-hub/config"
	_ "resume-hub/docs" // Important for Swagger
	"resume-hub/internal/delivery/http/middleware"
	v1 "resume-hub/internal/delivery/http/v1"
	"resume-hub/internal/domain"
	"resume-hub/internal/repository/memory"
	"resume-hub/internal/repository/postgres"
	"resume-hub/internal/usecase"
	"resume-hub/pkg/auth"
	"resume-hub/pkg/database"
	"resume-hub/pkg/logger"
	redisclient "resume-hub/pkg/redis"
	"resume-hub/pkg/security"
	"resume-hub/pkg/validation"
)

// @title           Resume Hub API
// @version         1.0
// @description     Candidates keep one resume each; recruiters search them.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	secLogger := security.InitSecurityLogger("resume-hub", cfg.Environment)
	defer secLogger.Sync()
	logger.Log.Info("Starting resume hub", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup Storage
	var (
		userRepo   domain.UserRepository
		resumeRepo domain.ResumeRepository
	)
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, database.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if cfg.RunMigrations {
			if err := database.RunMigrations(ctx, dbPool); err != nil {
				logger.Log.Error("Failed to run migrations", "error", err)
				os.Exit(1)
			}
		}

		userRepo = postgres.NewUserRepository(dbPool)
		resumeRepo = postgres.NewResumeRepository(dbPool)
	} else {
		userRepo = memory.NewUserRepository()
		resumeRepo = memory.NewResumeRepository()
	}

	healthChecks := map[string]usecase.HealthCheck{"storage": resumeRepo.Ping}

	// 4. Setup Redis (optional)
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redisclient.New(ctx, redisclient.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, falling back to in-memory rate limiting", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			healthChecks["redis"] = redisclient.HealthCheck(redisClient)
		}
	}

	// 5. Setup Auth (JWKS is optional)
	var keySet *auth.KeySet
	if cfg.JWKSURL != "" {
		keySet = auth.NewKeySet(cfg.JWKSURL)
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, keySet)

	// 6. Setup UseCases
	validate := validation.New()
	authUC := usecase.NewAuthUsecase(userRepo, tokens, validate)
	resumeUC := usecase.NewResumeUsecase(resumeRepo, validate, usecase.WithExportLimit(cfg.SearchExportLimit))
	healthUC := usecase.NewHealthUsecase(healthChecks, "redis")

	// 7. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		ResumeUC:     resumeUC,
		HealthUC:     healthUC,
		Tokens:       tokens,
		RateLimiter:  middleware.NewRateLimiter(ctx, redisClient, secLogger),
		LoginTracker: security.NewLoginTracker(security.DefaultLoginTrackerConfig(), redisClient, secLogger),
		SecLogger:    secLogger,
		Config:       cfg,
	})

	// 8. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
