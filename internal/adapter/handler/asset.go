package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-minutes/errors"
	"github.com/johnquangdev/meeting-minutes/internal/domain/repositories"
)

// ImageReader reads images by the references the meeting views return
type ImageReader interface {
	ReadImage(ctx context.Context, ref string) ([]byte, string, error)
}

// Asset serves stored images such as company logos
type Asset struct {
	images ImageReader
	logger *zap.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(images ImageReader, logger *zap.Logger) *Asset {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Asset{
		images: images,
		logger: logger,
	}
}

// GetImage handles GET /assets/images/*
func (h *Asset) GetImage(c echo.Context) error {
	ref := c.Param("*")

	b, mediaType, err := h.images.ReadImage(c.Request().Context(), ref)
	if err != nil {
		if stdErrors.Is(err, repositories.ErrAssetNotFound) {
			return HandleError(h.logger, c, errors.ErrNotFound("image"))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("read image", err))
	}

	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	return c.Blob(http.StatusOK, mediaType, b)
}
