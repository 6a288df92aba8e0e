package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/app"
	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// FormatHandler serves format menu resolution
type FormatHandler struct {
	resolver *app.FormatResolver
	logger   *zap.Logger
}

// NewFormatHandler creates a new format handler
func NewFormatHandler(resolver *app.FormatResolver, logger *zap.Logger) *FormatHandler {
	return &FormatHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// ResolveFormatsRequest is the request body for POST /api/v1/formats
type ResolveFormatsRequest struct {
	URL string `json:"url" binding:"required"`
}

// ResolveFormats handles POST /api/v1/formats
func (h *FormatHandler) ResolveFormats(c *gin.Context) {
	var req ResolveFormatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	menu, err := h.resolver.Resolve(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("resolving formats", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve formats"})
		return
	}

	c.JSON(http.StatusOK, menu)
}
