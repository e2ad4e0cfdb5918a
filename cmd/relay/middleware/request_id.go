package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/common/clients"
)

// PropagateRequestID copies the request ID assigned by Echo's RequestID
// middleware into the request context, so outbound calls and pipeline logs
// carry it.
//
// Must be registered after middleware.RequestID():
//
//	e.Use(middleware.RequestID())
//	e.Use(relaymw.PropagateRequestID())
func PropagateRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Request().Header.Get(echo.HeaderXRequestID)
			}

			if id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(clients.WithRequestID(req.Context(), id)))
			}

			return next(c)
		}
	}
}
