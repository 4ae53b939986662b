package handler

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/callreview-team/call-review/errors"
	dto "github.com/callreview-team/call-review/internal/adapter/dto/review"
	"github.com/callreview-team/call-review/internal/infrastructure/metrics"
	uerrors "github.com/callreview-team/call-review/internal/usecase/errors"
	"github.com/callreview-team/call-review/internal/usecase/export"
	"github.com/callreview-team/call-review/internal/usecase/review"
	"github.com/callreview-team/call-review/internal/usecase/transcript"
)

// Uploader pushes export artifacts to object storage.
type Uploader interface {
	UploadExport(ctx context.Context, objectName string, document []byte) error
	ExportURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// ExportHandler serves annotated-transcript exports. The uploader is
// nil when artifact storage is not configured.
type ExportHandler struct {
	source   *transcript.Source
	store    *review.Store
	uploader Uploader
	logger   *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(source *transcript.Source, store *review.Store, uploader Uploader, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{source: source, store: store, uploader: uploader, logger: logger}
}

// ExportAll returns the full annotated transcript document. The
// artifact is the response body itself, not wrapped in an envelope.
func (h *ExportHandler) ExportAll(c echo.Context) error {
	if h.source == nil {
		return HandleError(h.logger, c, errors.ErrSourceUnavailable(nil))
	}
	document := export.BuildAnnotated(h.source.Calls(), h.store.Snapshot(), h.store.MetricSet())
	return c.JSON(http.StatusOK, document)
}

// ExportCall returns the annotated document for a single call,
// consistent with the corresponding entry of the full export.
func (h *ExportHandler) ExportCall(c echo.Context) error {
	if h.source == nil {
		return HandleError(h.logger, c, errors.ErrSourceUnavailable(nil))
	}
	callID := c.Param("id")
	document, err := export.BuildAnnotatedCall(h.source.Calls(), h.store.Snapshot(), h.store.MetricSet(), callID)
	if err != nil {
		if stdErrors.Is(err, uerrors.ErrCallNotFound) {
			return HandleError(h.logger, c, errors.ErrCallNotFound(callID))
		}
		return HandleError(h.logger, c, errors.ErrExportFailed(err))
	}
	return c.JSON(http.StatusOK, document)
}

// Upload builds the full annotated export and pushes it to object
// storage under a unique key, returning the object name and a
// presigned download URL.
func (h *ExportHandler) Upload(c echo.Context) error {
	if h.source == nil {
		return HandleError(h.logger, c, errors.ErrSourceUnavailable(nil))
	}
	if h.uploader == nil {
		return HandleError(h.logger, c, errors.ErrExportStorageDisabled())
	}

	document := export.BuildAnnotated(h.source.Calls(), h.store.Snapshot(), h.store.MetricSet())
	payload, err := json.Marshal(document)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrExportFailed(err))
	}

	objectName := fmt.Sprintf("exports/annotated-%s-%s.json",
		time.Now().UTC().Format("20060102T150405Z"),
		uuid.New().String(),
	)

	ctx := c.Request().Context()
	if err := h.uploader.UploadExport(ctx, objectName, payload); err != nil {
		return HandleError(h.logger, c, errors.ErrExportUploadFailed(err))
	}
	metrics.Default.ExportUploads.Inc()

	url, err := h.uploader.ExportURL(ctx, objectName, 24*time.Hour)
	if err != nil {
		h.logger.Warn("export uploaded but presign failed", zap.String("object", objectName), zap.Error(err))
		url = ""
	}

	return HandleSuccess(h.logger, c, dto.UploadResponse{Object: objectName, URL: url})
}
