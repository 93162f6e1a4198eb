package activities

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

// CheckJobStatusName is the registered name of StatusActivities.CheckJobStatus
const CheckJobStatusName = "CheckJobStatus"

// JobStatusChecker advances a job by one provider status check
type JobStatusChecker interface {
	CheckStatus(ctx context.Context, jobID string) (*model.TranscriptionJob, error)
}

// CheckRequest identifies the job to check
type CheckRequest struct {
	JobID string `json:"job_id"`
}

// CheckResult is the job state after one check
type CheckResult struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	ErrorCount int    `json:"error_count"`
	Terminal   bool   `json:"terminal"`
}

// StatusActivities runs status checks on behalf of tracking workflows
type StatusActivities struct {
	checker JobStatusChecker
}

// NewStatusActivities creates the activity set
func NewStatusActivities(checker JobStatusChecker) *StatusActivities {
	return &StatusActivities{checker: checker}
}

// CheckJobStatus runs one status check. A job that no longer exists ends
// the workflow instead of being retried.
func (a *StatusActivities) CheckJobStatus(ctx context.Context, req CheckRequest) (CheckResult, error) {
	logger := activity.GetLogger(ctx)
	activity.RecordHeartbeat(ctx, req.JobID)

	job, err := a.checker.CheckStatus(ctx, req.JobID)
	if errors.Is(err, apperrors.ErrJobNotFound) {
		logger.Warn("Tracked job no longer exists", "jobId", req.JobID)
		return CheckResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "JobNotFound", err)
	}
	if err != nil {
		logger.Error("Status check failed", "jobId", req.JobID, "error", err)
		return CheckResult{}, err
	}

	return CheckResult{
		JobID:      job.ID,
		Status:     string(job.Status),
		ErrorCount: job.ErrorCount,
		Terminal:   job.Status.Terminal(),
	}, nil
}
