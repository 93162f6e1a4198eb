package dto

import (
	"encoding/json"
	"time"

	"lexscribe/internal/app/billing"
	"lexscribe/internal/app/model"
)

// DirectSubmitResponse is returned by the unauthenticated upload route
type DirectSubmitResponse struct {
	TranscriptionURL string `json:"transcriptionUrl"`
}

// ProviderStatusQuery is the query of the direct status route
type ProviderStatusQuery struct {
	TranscriptionURL string `form:"transcriptionUrl" binding:"required"`
}

// ProviderStatusResponse carries the provider's own status string
type ProviderStatusResponse struct {
	Status string `json:"status"`
}

// SubmitResponse is returned when a persisted job was created
type SubmitResponse struct {
	TranscriptionID  string        `json:"transcriptionId"`
	TranscriptionURL string        `json:"transcriptionUrl"`
	Status           string        `json:"status"`
	Usage            UsageDecision `json:"usage"`
	ExpiresAt        *time.Time    `json:"expiresAt,omitempty"`
}

// UsageDecision reports the gate outcome the submission ran under
type UsageDecision struct {
	Outcome          string  `json:"outcome"`
	Plan             string  `json:"plan"`
	RemainingSeconds float64 `json:"remainingSeconds"`
}

// ToUsageDecision converts a gate decision
func ToUsageDecision(d *billing.Decision) UsageDecision {
	if d == nil {
		return UsageDecision{}
	}
	return UsageDecision{
		Outcome:          string(d.Outcome),
		Plan:             string(d.Plan),
		RemainingSeconds: d.RemainingSeconds,
	}
}

// JobResponse represents a transcription job in API responses
type JobResponse struct {
	ID               string            `json:"id"`
	MeetingType      string            `json:"meetingType"`
	Status           string            `json:"status"`
	TranscriptionURL string            `json:"transcriptionUrl,omitempty"`
	AudioFileCount   int               `json:"audioFileCount"`
	Content          []json.RawMessage `json:"content,omitempty"`
	DurationSeconds  float64           `json:"durationSeconds,omitempty"`
	Summary          string            `json:"summary,omitempty"`
	Error            string            `json:"error,omitempty"`
	FailureReason    string            `json:"failureReason,omitempty"`
	ErrorCount       int               `json:"errorCount,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	CompletedAt      *time.Time        `json:"completedAt,omitempty"`
	SummarizedAt     *time.Time        `json:"summarizedAt,omitempty"`
	ExpiresAt        *time.Time        `json:"expiresAt,omitempty"`
}

// ToJobResponse converts a model to response DTO. Content is only included when withContent is set.
func ToJobResponse(j *model.TranscriptionJob, withContent bool) JobResponse {
	resp := JobResponse{
		ID:               j.ID,
		MeetingType:      string(j.MeetingType),
		Status:           string(j.Status),
		TranscriptionURL: j.ProviderHandle,
		AudioFileCount:   len(j.AudioFileURLs),
		DurationSeconds:  j.DurationSeconds,
		Summary:          j.Summary,
		Error:            j.ErrorDetails,
		FailureReason:    j.FailureReason,
		ErrorCount:       j.ErrorCount,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
		CompletedAt:      j.CompletedAt,
		SummarizedAt:     j.SummarizedAt,
		ExpiresAt:        j.ExpiresAt,
	}
	if withContent {
		resp.Content = j.Content
	}
	return resp
}

// ListJobsQuery represents query parameters for listing jobs
type ListJobsQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

// Offset returns the row offset of the page
func (q ListJobsQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PaginatedJobsResponse represents a paginated list of jobs
type PaginatedJobsResponse struct {
	Transcriptions []JobResponse      `json:"transcriptions"`
	Pagination     PaginationResponse `json:"pagination"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPagination computes pagination metadata
func NewPagination(page, limit, total int) PaginationResponse {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// SummaryResponse is returned after a summary was generated
type SummaryResponse struct {
	TranscriptionID string     `json:"transcriptionId"`
	MeetingType     string     `json:"meetingType"`
	Summary         string     `json:"summary"`
	SummarizedAt    *time.Time `json:"summarizedAt,omitempty"`
}
