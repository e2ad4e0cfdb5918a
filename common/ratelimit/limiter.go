package ratelimit

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/redis/go-redis/v9"
)

//go:embed rate_limit.lua
var rateLimitScript string

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed           bool  // Whether the request is allowed
	CurrentCount      int64 // Current count in the window
	Limit             int64 // The limit that was checked
	RetryAfterSeconds int64 // Seconds until the limit resets (0 if allowed)
}

// RateLimiter counts pushes per recipient using Redis + Lua
type RateLimiter struct {
	redis  redis.Scripter
	script *redis.Script
	logger Logger
}

// NewRateLimiter creates a new rate limiter with embedded Lua script
func NewRateLimiter(redisClient redis.Scripter, logger Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		script: redis.NewScript(rateLimitScript),
		logger: logger,
	}
}

// CheckRecipientLimit counts one push to recipient against policy
func (r *RateLimiter) CheckRecipientLimit(ctx context.Context, recipient string, policy Policy) (*RateLimitResult, error) {
	return r.checkLimit(ctx, RecipientKey(recipient), policy.Limit, policy.WindowSeconds())
}

// RecipientKey is the counter key for a recipient
func RecipientKey(recipient string) string {
	return fmt.Sprintf("rate_limit:recipient:%s", recipient)
}

// checkLimit executes the rate limit Lua script
func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int64, windowSec int) (*RateLimitResult, error) {
	// Run Lua script atomically
	raw, err := r.script.Run(ctx, r.redis, []string{key}, limit, windowSec).Result()
	if err != nil {
		r.logger.Error("rate limit check failed", "key", key, "error", err)
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	result, err := parseResult(raw)
	if err != nil {
		return nil, err
	}

	if !result.Allowed {
		r.logger.Warn("rate limit exceeded",
			"key", key,
			"current", result.CurrentCount,
			"limit", limit,
			"retry_after", result.RetryAfterSeconds)
	} else {
		r.logger.Debug("rate limit check passed",
			"key", key,
			"current", result.CurrentCount,
			"limit", limit)
	}

	return result, nil
}

// parseResult reads the script's {allowed, current_count, limit, retry_after} reply
func parseResult(raw interface{}) (*RateLimitResult, error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 4 {
		return nil, fmt.Errorf("unexpected script result format: %v", raw)
	}

	ints := make([]int64, len(values))
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return nil, fmt.Errorf("unexpected script result element %d: %v", i, v)
		}
		ints[i] = n
	}

	return &RateLimitResult{
		Allowed:           ints[0] == 1,
		CurrentCount:      ints[1],
		Limit:             ints[2],
		RetryAfterSeconds: ints[3],
	}, nil
}
