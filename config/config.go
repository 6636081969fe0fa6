package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"debug"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Database. An empty URL selects the in-memory store.
	DBUrl         string `env:"DATABASE_URL"`
	DBMaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns    int32  `env:"DB_MIN_CONNS" envDefault:"5"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"false"`

	// Identity
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"resume-hub"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"24h"`
	JWKSURL     string        `env:"JWKS_URL"`
	FrontendURL string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Redis backs the rate limiter; without it limits are kept in memory.
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	RateLimitWindowSeconds   int `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitGlobalThreshold int `env:"RATE_LIMIT_GLOBAL_THRESHOLD" envDefault:"100"`
	RateLimitLoginThreshold  int `env:"RATE_LIMIT_LOGIN_THRESHOLD" envDefault:"10"`

	SearchDefaultPageSize int `env:"SEARCH_DEFAULT_PAGE_SIZE" envDefault:"10"`
	SearchExportLimit     int `env:"SEARCH_EXPORT_LIMIT" envDefault:"10000"`

	Environment string `env:"APP_ENV" envDefault:"development"`
}

func LoadConfig() (*Config, error) {
	// .env is a local convenience; missing files are fine.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{cfg.FrontendURL}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Resumes will be kept in memory.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.GinMode == "release"
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Println("WARNING: JWT_SECRET not set, using an insecure development secret.")
		c.JWTSecret = "dev-secret"
	}
	if c.SearchDefaultPageSize < 1 {
		return fmt.Errorf("SEARCH_DEFAULT_PAGE_SIZE must be positive, got %d", c.SearchDefaultPageSize)
	}
	if c.SearchExportLimit < 1 {
		return fmt.Errorf("SEARCH_EXPORT_LIMIT must be positive, got %d", c.SearchExportLimit)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}

// RateLimitWindow returns the configured rate limiting window.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
