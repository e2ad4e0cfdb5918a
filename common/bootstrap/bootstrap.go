package bootstrap

import (
	"context"
	"fmt"

	"github.com/lyzr/line-relay/common/config"
	"github.com/lyzr/line-relay/common/logger"
	rediscommon "github.com/lyzr/line-relay/common/redis"
	"github.com/lyzr/line-relay/common/telemetry"
)

// Setup initializes all service components
// This is the main entry point for the service
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	// Apply options
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Initialize Redis (only the rate limiter needs it)
	if !options.skipRedis && components.Config.RateLimit.Enabled {
		components.Logger.Info("connecting to redis")
		components.Redis, err = rediscommon.Connect(ctx, rediscommon.Options{
			Addr:     components.Config.RedisAddr(),
			Password: components.Config.Redis.Password,
			DB:       components.Config.Redis.DB,
		}, components.Logger)
		if err != nil {
			// The limiter fails open, so a missing Redis is not fatal
			components.Logger.Warn("redis unavailable, rate limiting disabled", "error", err)
			components.Redis = nil
		} else {
			components.addCleanup(func() error {
				components.Logger.Info("closing redis connection")
				return components.Redis.Close()
			})
		}
	}

	// 4. Initialize telemetry (if not skipped)
	if !options.skipTelemetry {
		components.Telemetry = telemetry.New(
			components.Config.Telemetry.PprofPort,
			components.Logger,
		)

		if components.Config.Telemetry.EnablePprof {
			components.Logger.Info("initializing telemetry")
			if err := components.Telemetry.Start(ctx); err != nil {
				components.Logger.Warn("failed to start telemetry", "error", err)
				// Don't fail startup if telemetry fails
			}
		}
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"redis", components.Redis != nil,
		"telemetry", components.Telemetry != nil,
	)

	return components, nil
}
