package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/common/ratelimit"
)

// RecipientLimiter counts pushes per recipient
type RecipientLimiter interface {
	CheckRecipientLimit(ctx context.Context, recipient string, policy ratelimit.Policy) (*ratelimit.RateLimitResult, error)
}

// RecipientRateLimitMiddleware limits pushes per recipient.
// The recipient is read from the :userId route parameter.
func RecipientRateLimitMiddleware(limiter RecipientLimiter, policy ratelimit.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			recipient := c.Param("userId")
			if recipient == "" {
				// Handler rejects it
				return next(c)
			}

			result, err := limiter.CheckRecipientLimit(c.Request().Context(), recipient, policy)
			if err != nil {
				// On error, allow request (fail open for availability)
				return next(c)
			}

			if !result.Allowed {
				c.Response().Header().Set("Retry-After", strconv.FormatInt(result.RetryAfterSeconds, 10))
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":               "recipient_rate_limit_exceeded",
					"retry_after_seconds": result.RetryAfterSeconds,
				})
			}

			return next(c)
		}
	}
}
