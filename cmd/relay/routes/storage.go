package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/cmd/relay/container"
	"github.com/lyzr/line-relay/cmd/relay/handlers"
)

// RegisterStorageRoutes registers the diagnostics listing when enabled
func RegisterStorageRoutes(e *echo.Echo, base string, c *container.Container) {
	cfg := c.Components.Config
	if !cfg.Features.EnableDiagnostics {
		return
	}

	h := handlers.NewStorageHandler(c.Store, cfg.Storage.Bucket, c.Components.Logger)

	e.GET(base+"v1/storage/objects", h.ListObjects) // GET {base}v1/storage/objects
}
