package services

import (
	"context"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/api/v1/dto"
	"lexscribe/internal/app/billing"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/orchestrator"
)

// TranscriptionServiceImpl implements TranscriptionService
type TranscriptionServiceImpl struct {
	orchestrator  JobOrchestrator
	exposeDetails bool
}

// NewTranscriptionService creates a new transcription service. Upstream
// failure details are returned to clients only when exposeDetails is set.
func NewTranscriptionService(orchestrator JobOrchestrator, exposeDetails bool) TranscriptionService {
	return &TranscriptionServiceImpl{
		orchestrator:  orchestrator,
		exposeDetails: exposeDetails,
	}
}

func (s *TranscriptionServiceImpl) translate(err error) error {
	return errors.FromDomain(err, s.exposeDetails)
}

func parseMeetingType(v string) (model.MeetingType, error) {
	mt, err := model.ParseMeetingType(v)
	if err != nil {
		return "", errors.NewValidationError("Invalid transcription request", map[string]string{
			"meetingtype": "must be one of legal, meeting",
		})
	}
	return mt, nil
}

// SubmitDirect uploads and submits without creating a job record
func (s *TranscriptionServiceImpl) SubmitDirect(ctx context.Context, meetingType string, files []orchestrator.AudioFile) (*dto.DirectSubmitResponse, error) {
	mt, err := parseMeetingType(meetingType)
	if err != nil {
		return nil, err
	}

	handle, err := s.orchestrator.SubmitDirect(ctx, mt, files)
	if err != nil {
		return nil, s.translate(err)
	}
	return &dto.DirectSubmitResponse{TranscriptionURL: handle}, nil
}

// ProviderStatus returns the provider status of a handle
func (s *TranscriptionServiceImpl) ProviderStatus(ctx context.Context, handle string) (*dto.ProviderStatusResponse, error) {
	status, err := s.orchestrator.ProviderStatus(ctx, handle)
	if err != nil {
		return nil, s.translate(err)
	}
	return &dto.ProviderStatusResponse{Status: string(status)}, nil
}

// Submit creates a persisted transcription job under the gate decision
func (s *TranscriptionServiceImpl) Submit(ctx context.Context, userID string, decision *billing.Decision, meetingType string, files []orchestrator.AudioFile) (*dto.SubmitResponse, error) {
	mt, err := parseMeetingType(meetingType)
	if err != nil {
		return nil, err
	}
	if decision == nil || !decision.Allowed() {
		return nil, errors.NewForbiddenError("Usage was not authorized").WithCode(errors.CodeSubscriptionRequired)
	}

	job, err := s.orchestrator.Submit(ctx, orchestrator.SubmitInput{
		UserID:        userID,
		MeetingType:   mt,
		Files:         files,
		RetentionDays: decision.Limits.RetentionDays,
	})
	if err != nil {
		return nil, s.translate(err)
	}

	return &dto.SubmitResponse{
		TranscriptionID:  job.ID,
		TranscriptionURL: job.ProviderHandle,
		Status:           string(job.Status),
		Usage:            dto.ToUsageDecision(decision),
		ExpiresAt:        job.ExpiresAt,
	}, nil
}

// GetTranscription returns one of the user's jobs, refreshed if still in flight
func (s *TranscriptionServiceImpl) GetTranscription(ctx context.Context, userID, id string) (*dto.JobResponse, error) {
	job, err := s.orchestrator.GetJob(ctx, userID, id)
	if err != nil {
		return nil, s.translate(err)
	}
	resp := dto.ToJobResponse(job, true)
	return &resp, nil
}

// ListTranscriptions returns one page of the user's jobs
func (s *TranscriptionServiceImpl) ListTranscriptions(ctx context.Context, userID string, query dto.ListJobsQuery) (*dto.PaginatedJobsResponse, error) {
	jobs, total, err := s.orchestrator.ListJobs(ctx, userID, query.Limit, query.Offset())
	if err != nil {
		return nil, s.translate(err)
	}

	resp := &dto.PaginatedJobsResponse{
		Transcriptions: make([]dto.JobResponse, 0, len(jobs)),
		Pagination:     dto.NewPagination(query.Page, query.Limit, total),
	}
	for i := range jobs {
		resp.Transcriptions = append(resp.Transcriptions, dto.ToJobResponse(&jobs[i], false))
	}
	return resp, nil
}

// Summarize generates the summary of a completed job
func (s *TranscriptionServiceImpl) Summarize(ctx context.Context, userID, id string) (*dto.SummaryResponse, error) {
	job, err := s.orchestrator.Summarize(ctx, userID, id)
	if err != nil {
		return nil, s.translate(err)
	}
	return &dto.SummaryResponse{
		TranscriptionID: job.ID,
		MeetingType:     string(job.MeetingType),
		Summary:         job.Summary,
		SummarizedAt:    job.SummarizedAt,
	}, nil
}
