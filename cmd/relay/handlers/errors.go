package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/cmd/relay/models"
	"github.com/lyzr/line-relay/cmd/relay/service"
	"github.com/lyzr/line-relay/common/logger"
	"github.com/lyzr/line-relay/common/messaging"
	"github.com/lyzr/line-relay/common/storage"
	"github.com/lyzr/line-relay/common/tts"
)

// respondError maps a failure onto a status code and an {error} body
func respondError(c echo.Context, log *logger.Logger, err error) error {
	status, message := classify(err)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
	} else {
		log.Warn("request rejected", "status", status, "error", err)
	}

	return c.JSON(status, models.ErrorResponse{Error: message})
}

func classify(err error) (int, string) {
	var (
		validationErr *service.ValidationError
		deliveryErr   *messaging.DeliveryError
		synthesisErr  *tts.SynthesisError
		storageErr    *storage.StorageError
		audioErr      *service.AudioError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()

	case errors.As(err, &deliveryErr):
		return deliveryStatus(deliveryErr), deliveryErr.Error()

	case errors.As(err, &synthesisErr):
		if synthesisErr.StatusCode != 0 {
			return http.StatusBadGateway, fmt.Sprintf("speech synthesis failed with status %d", synthesisErr.StatusCode)
		}
		return http.StatusBadGateway, "speech synthesis failed"

	case errors.As(err, &storageErr):
		return http.StatusBadGateway, fmt.Sprintf("media store %s failed (%s)", storageErr.Op, storageErr.Kind)

	case errors.As(err, &audioErr):
		return http.StatusBadGateway, "synthesized audio could not be measured"

	case errors.Is(err, service.ErrPublicURLUnavailable):
		return http.StatusInternalServerError, service.ErrPublicURLUnavailable.Error()

	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// deliveryStatus passes the platform's status through where the platform is
// the authority on the failure
func deliveryStatus(err *messaging.DeliveryError) int {
	switch err.Kind {
	case messaging.KindRateLimited:
		return http.StatusTooManyRequests
	case messaging.KindInvalidRecipient, messaging.KindMalformed:
		if err.StatusCode >= 400 && err.StatusCode < 500 {
			return err.StatusCode
		}
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
