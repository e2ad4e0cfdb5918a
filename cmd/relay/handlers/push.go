package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/cmd/relay/models"
	"github.com/lyzr/line-relay/cmd/relay/service"
	"github.com/lyzr/line-relay/common/clients"
	"github.com/lyzr/line-relay/common/logger"
	"github.com/lyzr/line-relay/common/messaging"
)

// Pipeline runs the three push request shapes
type Pipeline interface {
	PushText(ctx context.Context, recipient, text string) (*messaging.PushResult, error)
	PushTTS(ctx context.Context, recipient string, req models.TTSPushRequest) (*service.TTSResult, error)
	PushImage(ctx context.Context, recipient string, img models.ImageUpload, captionText string) (*service.ImageResult, error)
}

// PushHandler handles push requests
type PushHandler struct {
	pipeline       Pipeline
	maxUploadBytes int64
	log            *logger.Logger
}

// NewPushHandler creates a new push handler
func NewPushHandler(pipeline Pipeline, maxUploadBytes int64, log *logger.Logger) *PushHandler {
	return &PushHandler{
		pipeline:       pipeline,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// PushText sends a text message
// POST {base}v1/push_message/:userId/text
func (h *PushHandler) PushText(c echo.Context) error {
	var req models.TextPushRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
	}

	result, err := h.pipeline.PushText(c.Request().Context(), c.Param("userId"), req.Text)
	if err != nil {
		return respondError(c, h.requestLogger(c), err)
	}

	return c.JSON(http.StatusOK, models.PushResponse{SentMessages: sentMessages(result)})
}

// PushTTS synthesizes speech and sends it as audio
// POST {base}v1/push_message/:userId/tts
func (h *PushHandler) PushTTS(c echo.Context) error {
	var req models.TTSPushRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body"})
	}

	result, err := h.pipeline.PushTTS(c.Request().Context(), c.Param("userId"), req)
	if err != nil {
		return respondError(c, h.requestLogger(c), err)
	}

	return c.JSON(http.StatusOK, models.TTSPushResponse{
		SentMessages:     sentMessages(result.Push),
		TTSAudioURL:      result.AudioURL,
		TTSAudioDuration: result.DurationMs,
	})
}

// PushImage sends an uploaded image
// POST {base}v1/push_message/:userId/image (multipart: image, text)
func (h *PushHandler) PushImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image: multipart file part is required"})
	}
	if file.Size > h.maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error: fmt.Sprintf("image: exceeds %d bytes", h.maxUploadBytes),
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image: unreadable upload"})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image: unreadable upload"})
	}
	if int64(len(data)) > h.maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error: fmt.Sprintf("image: exceeds %d bytes", h.maxUploadBytes),
		})
	}

	img := models.ImageUpload{
		Data:        data,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Filename:    file.Filename,
	}

	result, err := h.pipeline.PushImage(c.Request().Context(), c.Param("userId"), img, c.FormValue("text"))
	if err != nil {
		return respondError(c, h.requestLogger(c), err)
	}

	return c.JSON(http.StatusOK, models.ImagePushResponse{
		SentMessages: sentMessages(result.Push),
		ImageURL:     result.ImageURL,
	})
}

func (h *PushHandler) requestLogger(c echo.Context) *logger.Logger {
	id, _ := clients.GetRequestID(c.Request().Context())
	return h.log.WithRequestID(id).WithRecipient(c.Param("userId"))
}

// sentMessages never returns nil so the field always renders as a list
func sentMessages(result *messaging.PushResult) []messaging.SentMessage {
	if result == nil || result.SentMessages == nil {
		return []messaging.SentMessage{}
	}
	return result.SentMessages
}
