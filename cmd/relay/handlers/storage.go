package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lyzr/line-relay/cmd/relay/models"
	"github.com/lyzr/line-relay/common/logger"
	"github.com/lyzr/line-relay/common/storage"
)

// ObjectLister lists stored objects and derives their public URLs
type ObjectLister interface {
	List(ctx context.Context, bucket string) ([]storage.ObjectSummary, error)
	SummaryURL(obj storage.ObjectSummary) (string, bool)
}

// StorageHandler serves the diagnostics listing of the media bucket
type StorageHandler struct {
	lister ObjectLister
	bucket string
	log    *logger.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(lister ObjectLister, bucket string, log *logger.Logger) *StorageHandler {
	return &StorageHandler{
		lister: lister,
		bucket: bucket,
		log:    log,
	}
}

// ListObjects lists every object in the media bucket
// GET {base}v1/storage/objects
func (h *StorageHandler) ListObjects(c echo.Context) error {
	objects, err := h.lister.List(c.Request().Context(), h.bucket)
	if err != nil {
		return respondError(c, h.log, err)
	}

	views := make([]models.ObjectView, 0, len(objects))
	for _, obj := range objects {
		view := models.ObjectView{
			BucketName: obj.Bucket,
			ObjectName: obj.Key,
			Size:       obj.Size,
			ETag:       obj.ETag,
			IsDir:      obj.IsDir,
			Metadata:   obj.Metadata,
		}
		if view.Metadata == nil {
			view.Metadata = map[string]string{}
		}
		if !obj.LastModified.IsZero() {
			modified := obj.LastModified
			view.LastModified = &modified
		}
		if url, ok := h.lister.SummaryURL(obj); ok {
			view.URL = &url
		}
		views = append(views, view)
	}

	return c.JSON(http.StatusOK, models.ObjectListResponse{Objects: views})
}
