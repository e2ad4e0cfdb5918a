package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/cmd/relay/models"
)

// HealthChecker reports whether optional dependencies answer
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SystemHandler serves liveness, readiness and version
type SystemHandler struct {
	checker HealthChecker
	version string
	now     func() time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(checker HealthChecker, version string) *SystemHandler {
	return &SystemHandler{
		checker: checker,
		version: version,
		now:     time.Now,
	}
}

// Health reports liveness
// GET {base}health
func (h *SystemHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{Timestamp: h.now().Unix()})
}

// Version reports the build version
// GET {base}version
func (h *SystemHandler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, models.VersionResponse{Version: h.version})
}

// Ready reports whether Redis (when used) answers
// GET {base}ready
func (h *SystemHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.checker.Health(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
