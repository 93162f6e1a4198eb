package services

import (
	"context"
	"io"

	"lexscribe/internal/api/v1/dto"
	"lexscribe/internal/app/api/speech"
	"lexscribe/internal/app/billing"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/orchestrator"
)

// TranscriptionService defines the interface for transcription operations
type TranscriptionService interface {
	SubmitDirect(ctx context.Context, meetingType string, files []orchestrator.AudioFile) (*dto.DirectSubmitResponse, error)
	ProviderStatus(ctx context.Context, handle string) (*dto.ProviderStatusResponse, error)
	Submit(ctx context.Context, userID string, decision *billing.Decision, meetingType string, files []orchestrator.AudioFile) (*dto.SubmitResponse, error)
	GetTranscription(ctx context.Context, userID, id string) (*dto.JobResponse, error)
	ListTranscriptions(ctx context.Context, userID string, query dto.ListJobsQuery) (*dto.PaginatedJobsResponse, error)
	Summarize(ctx context.Context, userID, id string) (*dto.SummaryResponse, error)
}

// SubscriptionService defines the interface for subscription operations
type SubscriptionService interface {
	Checkout(ctx context.Context, userID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	Cancel(ctx context.Context, userID string) (*dto.SubscriptionStatusResponse, error)
	Notify(ctx context.Context, remoteIP string, body []byte) error
	Status(ctx context.Context, userID string) (*dto.SubscriptionStatusResponse, error)
	Usage(ctx context.Context, userID string) (*dto.UsageResponse, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	ExportTranscriptions(ctx context.Context, userID string, writer io.Writer) error
}

// JobOrchestrator is the part of the orchestrator the API drives
type JobOrchestrator interface {
	Submit(ctx context.Context, in orchestrator.SubmitInput) (*model.TranscriptionJob, error)
	SubmitDirect(ctx context.Context, meetingType model.MeetingType, files []orchestrator.AudioFile) (string, error)
	ProviderStatus(ctx context.Context, handle string) (speech.Status, error)
	GetJob(ctx context.Context, userID, jobID string) (*model.TranscriptionJob, error)
	ListJobs(ctx context.Context, userID string, limit, offset int) ([]model.TranscriptionJob, int, error)
	Summarize(ctx context.Context, userID, jobID string) (*model.TranscriptionJob, error)
}

// SubscriptionManager drives the subscription lifecycle
type SubscriptionManager interface {
	Checkout(ctx context.Context, userID string, planID model.PlanID) (*billing.Checkout, error)
	Cancel(ctx context.Context, userID string) (*model.Subscription, error)
	HandleNotification(ctx context.Context, n *billing.Notification) error
}

// UsageReporter answers subscription status and usage questions
type UsageReporter interface {
	Status(ctx context.Context, userID string) (*billing.SubscriptionStatus, error)
	Usage(ctx context.Context, userID string) (*billing.UsageStats, error)
}

// NotificationVerifier authenticates payment notifications
type NotificationVerifier interface {
	Verify(remoteIP string, body []byte) (*billing.Notification, error)
}
