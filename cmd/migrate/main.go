package main

import (
	"context"
	"log"
	"os"
	"time"

	"resume-hub/config"
	"resume-hub/pkg/database"
	"resume-hub/pkg/logger"
)

// Applies the embedded schema migrations to DATABASE_URL and exits.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	if cfg.DBUrl == "" {
		logger.Log.Error("DATABASE_URL is required to run migrations")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl, database.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	logger.Log.Info("Migrations applied")
}
