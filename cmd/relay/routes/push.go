package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/cmd/relay/container"
	"github.com/lyzr/line-relay/cmd/relay/handlers"
	"github.com/lyzr/line-relay/common/middleware"
)

// RegisterPushRoutes registers the three push endpoints under base
func RegisterPushRoutes(e *echo.Echo, base string, c *container.Container) {
	cfg := c.Components.Config

	// Create handler using services from container
	h := handlers.NewPushHandler(c.PushService, cfg.Service.MaxUploadBytes, c.Components.Logger)

	push := e.Group(base + "v1/push_message/:userId")
	if c.RateLimiter != nil {
		push.Use(middleware.RecipientRateLimitMiddleware(c.RateLimiter, c.RateLimitPolicy()))
	}
	{
		push.POST("/text", h.PushText)   // POST {base}v1/push_message/U1/text
		push.POST("/tts", h.PushTTS)     // POST {base}v1/push_message/U1/tts
		push.POST("/image", h.PushImage) // POST {base}v1/push_message/U1/image
	}
}
