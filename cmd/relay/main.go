package main

import (
	"context"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lyzr/line-relay/cmd/relay/container"
	relaymw "github.com/lyzr/line-relay/cmd/relay/middleware"
	"github.com/lyzr/line-relay/cmd/relay/routes"
	"github.com/lyzr/line-relay/common/bootstrap"
	"github.com/lyzr/line-relay/common/buildinfo"
	"github.com/lyzr/line-relay/common/server"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, redis, telemetry)
	components, err := bootstrap.Setup(ctx, "line-relay")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap line-relay: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all clients created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		components.Logger.Error("Failed to initialize service container", "error", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, components)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server
	if err := startServer(e, components); err != nil {
		components.Logger.Error("Server error", "error", err)
		components.Shutdown(ctx)
		os.Exit(1)
	}
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, components *bootstrap.Components) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(relaymw.PropagateRequestID())
	e.Use(middleware.BodyLimit(bodyLimit(components.Config.Service.MaxUploadBytes)))
}

// bodyLimit leaves room for multipart framing around the image
func bodyLimit(maxUploadBytes int64) string {
	return fmt.Sprintf("%dK", maxUploadBytes/1024+64)
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	base := serviceContainer.Components.Config.Service.BasePath

	routes.RegisterSystemRoutes(e, base, serviceContainer)
	routes.RegisterPushRoutes(e, base, serviceContainer)
	routes.RegisterStorageRoutes(e, base, serviceContainer)
}

// startServer runs Echo behind the graceful-shutdown server
func startServer(e *echo.Echo, components *bootstrap.Components) error {
	cfg := components.Config.Service
	components.Logger.Info("Starting line-relay",
		"port", cfg.Port,
		"base_path", cfg.BasePath,
		"version", buildinfo.Current(),
	)

	srv := server.New("line-relay", cfg.Port, e, server.Options{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, components.Logger)

	return srv.Start()
}
