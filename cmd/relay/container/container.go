package container

import (
	"fmt"
	"net/http"

	"github.com/lyzr/line-relay/cmd/relay/service"
	"github.com/lyzr/line-relay/common/audio"
	"github.com/lyzr/line-relay/common/bootstrap"
	"github.com/lyzr/line-relay/common/messaging"
	"github.com/lyzr/line-relay/common/ratelimit"
	"github.com/lyzr/line-relay/common/storage"
	"github.com/lyzr/line-relay/common/tts"
)

// Container holds all initialized clients and services (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Clients
	Store     *storage.Client
	Speech    *tts.Client
	Audio     *audio.Inspector
	Messaging *messaging.LineClient

	// Services
	PushService *service.PushService

	// RateLimiter is nil unless rate limiting is enabled and Redis answered
	RateLimiter *ratelimit.RateLimiter
}

// NewContainer initializes all clients and services once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	store, err := storage.New(storage.Options{
		Host:      cfg.Storage.Host,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Secure:    cfg.Storage.Secure,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
		Timeout:   cfg.Storage.Timeout,
	}, components.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	// No client timeout: long text legitimately takes a while to synthesize
	speech := tts.NewClient(cfg.TTS.URL, &http.Client{}, components.Logger)

	line, err := messaging.NewLineClient(messaging.Options{
		AccessToken: cfg.Line.ChannelAccessToken,
		Endpoint:    cfg.Line.Endpoint,
		Timeout:     cfg.Line.Timeout,
	}, components.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	inspector := audio.NewInspector()

	// Initialize services (bottom-up: dependencies first)
	pushService := service.NewPushService(
		store,
		speech,
		inspector,
		line,
		service.NewKeyGenerator(),
		cfg.Storage.Bucket,
		components.Logger,
		components.Telemetry,
	)

	c := &Container{
		Components:  components,
		Store:       store,
		Speech:      speech,
		Audio:       inspector,
		Messaging:   line,
		PushService: pushService,
	}

	if cfg.RateLimit.Enabled && components.Redis != nil {
		c.RateLimiter = ratelimit.NewRateLimiter(components.Redis.GetUnderlying(), components.Logger)
	}

	return c, nil
}

// RateLimitPolicy returns the configured per-recipient budget
func (c *Container) RateLimitPolicy() ratelimit.Policy {
	return ratelimit.Policy{
		Limit:  c.Components.Config.RateLimit.PerRecipient,
		Window: c.Components.Config.RateLimit.Window,
	}
}
