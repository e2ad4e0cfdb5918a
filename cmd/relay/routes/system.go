package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/cmd/relay/container"
	"github.com/lyzr/line-relay/cmd/relay/handlers"
	"github.com/lyzr/line-relay/common/buildinfo"
)

// RegisterSystemRoutes registers health, readiness and version
func RegisterSystemRoutes(e *echo.Echo, base string, c *container.Container) {
	h := handlers.NewSystemHandler(c.Components, buildinfo.Current())

	e.GET(base+"health", h.Health)   // GET {base}health
	e.GET(base+"ready", h.Ready)     // GET {base}ready
	e.GET(base+"version", h.Version) // GET {base}version
}
