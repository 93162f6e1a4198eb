package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lexscribe/internal/api/middleware"
	"lexscribe/internal/api/v1/dto"
	"lexscribe/internal/api/v1/services"
)

// TranscriptionHandler handles transcription-related API endpoints
type TranscriptionHandler struct {
	service services.TranscriptionService
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{
		service: service,
	}
}

// UploadAndTranscribe handles POST /upload-and-transcribe
// Uploads the recordings and starts a provider transcription without storing a job
func (h *TranscriptionHandler) UploadAndTranscribe(c *gin.Context) {
	files, closeFiles, err := audioFiles(c)
	defer closeFiles()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.SubmitDirect(c.Request.Context(), meetingType(c), files)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ProviderStatus handles GET /transcription-status
func (h *TranscriptionHandler) ProviderStatus(c *gin.Context) {
	var query dto.ProviderStatusQuery

	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.ProviderStatus(c.Request.Context(), query.TranscriptionURL)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Create handles POST /api/transcriptions
// Creates a job for the authenticated user under the usage gate decision
func (h *TranscriptionHandler) Create(c *gin.Context) {
	files, closeFiles, err := audioFiles(c)
	defer closeFiles()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Submit(
		c.Request.Context(),
		middleware.UserID(c),
		middleware.Decision(c),
		meetingType(c),
		files,
	)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Get handles GET /api/transcriptions/:id
func (h *TranscriptionHandler) Get(c *gin.Context) {
	response, err := h.service.GetTranscription(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// List handles GET /api/transcriptions
func (h *TranscriptionHandler) List(c *gin.Context) {
	var query dto.ListJobsQuery

	// Validate query parameters
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.ListTranscriptions(c.Request.Context(), middleware.UserID(c), query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	// Set total count header
	c.Header("X-Total-Count", strconv.Itoa(response.Pagination.Total))

	c.JSON(http.StatusOK, response)
}

// Summarize handles POST /api/transcriptions/:id/summary
func (h *TranscriptionHandler) Summarize(c *gin.Context) {
	response, err := h.service.Summarize(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
