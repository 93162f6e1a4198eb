package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lexscribe/internal/api/middleware"
	"lexscribe/internal/api/v1/services"
	"lexscribe/internal/app/export"
)

// ExportHandler handles export-related HTTP requests
type ExportHandler struct {
	service services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(service services.ExportService) *ExportHandler {
	return &ExportHandler{
		service: service,
	}
}

// Export handles GET /api/transcriptions/export
func (h *ExportHandler) Export(c *gin.Context) {
	// the workbook is built in memory so a failure can still change the status code
	var buf bytes.Buffer
	if err := h.service.ExportTranscriptions(c.Request.Context(), middleware.UserID(c), &buf); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", export.FileName(time.Now())))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
