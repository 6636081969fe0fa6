package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before a block
	AttemptWindow time.Duration // window for counting attempts
	BlockDuration time.Duration
	UseIPTracking bool
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
		UseIPTracking: true,
	}
}

// LoginTracker counts failed logins in Redis and blocks brute-force attempts.
// Without a Redis client it fails open.
type LoginTracker struct {
	config LoginTrackerConfig
	client *goredis.Client
	logger *SecurityLogger
}

func NewLoginTracker(config LoginTrackerConfig, client *goredis.Client, logger *SecurityLogger) *LoginTracker {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{config: config, client: client, logger: logger}
}

// Redis key patterns
const (
	failLoginUserPrefix    = "fail:login:user:"
	failLoginIPPrefix      = "fail:login:ip:"
	blockedLoginUserPrefix = "blocked:login:user:"
	blockedLoginIPPrefix   = "blocked:login:ip:"
)

// IncrWithTTLScript increments KEYS[1] and sets a TTL of ARGV[1] seconds on first use.
const IncrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func (lt *LoginTracker) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	if lt.client == nil {
		return false, nil
	}

	exists, err := lt.client.Exists(ctx, blockedLoginUserPrefix+HashValue(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check user block: %w", err)
	}
	if exists > 0 {
		return true, nil
	}

	if lt.config.UseIPTracking && ip != "" {
		exists, err := lt.client.Exists(ctx, blockedLoginIPPrefix+ip).Result()
		if err != nil {
			return false, fmt.Errorf("failed to check IP block: %w", err)
		}
		if exists > 0 {
			return true, nil
		}
	}
	return false, nil
}

// RecordFailedAttempt returns whether the attempt pushed the user into a block.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error) {
	lt.logger.LogLoginFailed(ctx, email, ip, userAgent, requestID, "invalid_credentials")

	if lt.client == nil {
		return false, 0, nil
	}

	ttlSeconds := int(lt.config.AttemptWindow.Seconds())
	userCount, err := atomicIncrement(ctx, lt.client, failLoginUserPrefix+HashValue(email), ttlSeconds)
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment user counter: %w", err)
	}

	if lt.config.UseIPTracking && ip != "" {
		_, _ = atomicIncrement(ctx, lt.client, failLoginIPPrefix+ip, ttlSeconds) // best effort
	}

	if userCount >= lt.config.MaxAttempts {
		if err := lt.createBlock(ctx, email, ip, requestID); err != nil {
			return true, userCount, fmt.Errorf("failed to create block: %w", err)
		}
		return true, userCount, nil
	}
	return false, userCount, nil
}

func atomicIncrement(ctx context.Context, client *goredis.Client, key string, ttlSeconds int) (int, error) {
	result, err := client.Eval(ctx, IncrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (lt *LoginTracker) createBlock(ctx context.Context, email, ip, requestID string) error {
	blockTTL := lt.config.BlockDuration

	if err := lt.client.Set(ctx, blockedLoginUserPrefix+HashValue(email), "1", blockTTL).Err(); err != nil {
		return fmt.Errorf("failed to set user block: %w", err)
	}

	if lt.config.UseIPTracking && ip != "" {
		if err := lt.client.Set(ctx, blockedLoginIPPrefix+ip, "1", blockTTL).Err(); err != nil {
			// user is already blocked
			lt.logger.zapLogger.Warn("failed to set IP block", zap.Error(err))
		}
	}

	lt.logger.LogBlockCreated(ctx, "email", email, ip, requestID, int(blockTTL.Minutes()))
	return nil
}

// ClearAttempts resets the failure counters after a successful login.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email, ip string) error {
	if lt.client == nil {
		return nil
	}

	if err := lt.client.Del(ctx, failLoginUserPrefix+HashValue(email)).Err(); err != nil {
		return fmt.Errorf("failed to clear user attempts: %w", err)
	}
	if lt.config.UseIPTracking && ip != "" {
		_ = lt.client.Del(ctx, failLoginIPPrefix+ip).Err()
	}
	return nil
}
