package orchestrator

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"lexscribe/internal/app/api/speech"
	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/summary"
)

// CheckStatus runs one status check for a job and persists the resulting
// transition. Completed and failed jobs are returned unchanged without
// contacting the provider.
func (o *Orchestrator) CheckStatus(ctx context.Context, jobID string) (*model.TranscriptionJob, error) {
	job, err := o.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return job, nil
	}

	update := o.evaluate(ctx, job)
	applied, err := o.jobs.UpdateJobStatus(ctx, job.ID, update)
	if err != nil {
		return nil, err
	}
	if !applied {
		// a concurrent check finished the job first
		return o.jobs.GetJob(ctx, jobID)
	}

	previous := job.Status
	update.Apply(job)
	if previous != job.Status {
		o.metrics.RecordTransition(string(job.Status))
		o.logger.Info("job status changed",
			zap.String("job_id", job.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(job.Status)),
		)
	}

	if job.Status == model.JobStatusCompleted {
		o.metrics.RecordCompletion(job.DurationSeconds, len(job.Content))
		if err := o.usage.RecordForUser(ctx, job.UserID, model.UsageTranscription, job.DurationSeconds); err != nil {
			o.logger.Warn("failed to record transcription usage",
				zap.String("job_id", job.ID),
				zap.String("user_id", job.UserID),
				zap.Float64("seconds", job.DurationSeconds),
				zap.Error(err),
			)
		}
	}
	return job, nil
}

// evaluate maps the provider's answer onto the next job state
func (o *Orchestrator) evaluate(ctx context.Context, job *model.TranscriptionJob) model.JobUpdate {
	if job.ProviderHandle == "" {
		return o.statusError(job, apperrors.ErrMissingHandle)
	}

	t, err := o.provider.Status(ctx, job.ProviderHandle)
	if err != nil {
		return o.statusError(job, err)
	}
	o.cache.Set(ctx, job.ProviderHandle, string(t.Status))

	now := o.now()
	switch t.Status {
	case speech.StatusSucceeded:
		results, err := o.provider.Results(ctx, t)
		if err != nil {
			return o.statusError(job, err)
		}
		content := make([]json.RawMessage, len(results))
		for i, r := range results {
			content[i] = r.Raw
		}
		o.metrics.RecordStatusCheck("succeeded")
		return model.JobUpdate{
			Status:          model.JobStatusCompleted,
			Content:         content,
			DurationSeconds: speech.TotalDurationSeconds(results),
			CompletedAt:     &now,
			UpdatedAt:       now,
		}
	case speech.StatusFailed:
		o.metrics.RecordStatusCheck("failed")
		return model.JobUpdate{
			Status:        model.JobStatusFailed,
			ErrorDetails:  t.ErrorMessage(),
			FailureReason: model.FailureReasonProvider,
			UpdatedAt:     now,
		}
	}

	// NotStarted, Running and anything the provider adds later
	o.metrics.RecordStatusCheck("processing")
	return model.JobUpdate{
		Status:    model.JobStatusProcessing,
		UpdatedAt: now,
	}
}

// statusError counts a failed check. The job fails for good once the error
// budget is spent, otherwise it stays retryable in the error state.
func (o *Orchestrator) statusError(job *model.TranscriptionJob, cause error) model.JobUpdate {
	o.metrics.RecordStatusCheck("error")
	o.logger.Warn("status check failed",
		zap.String("job_id", job.ID),
		zap.Int("error_count", job.ErrorCount+1),
		zap.Error(cause),
	)

	now := o.now()
	update := model.JobUpdate{
		Status:       model.JobStatusError,
		ErrorDetails: cause.Error(),
		ErrorCount:   job.ErrorCount + 1,
		UpdatedAt:    now,
	}
	if update.ErrorCount >= o.opts.MaxStatusErrors {
		update.Status = model.JobStatusFailed
		update.FailureReason = model.FailureReasonStatusExhausted
	}
	return update
}

// GetJob returns a job owned by userID. In-flight jobs get one status check first.
func (o *Orchestrator) GetJob(ctx context.Context, userID, jobID string) (*model.TranscriptionJob, error) {
	job, err := o.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.InFlight() {
		return job, nil
	}

	checked, err := o.CheckStatus(ctx, jobID)
	if err != nil {
		o.logger.Warn("on-demand status check failed", zap.String("job_id", jobID), zap.Error(err))
		return job, nil
	}
	return checked, nil
}

// ListJobs returns one page of the user's jobs and the total count
func (o *Orchestrator) ListJobs(ctx context.Context, userID string, limit, offset int) ([]model.TranscriptionJob, int, error) {
	return o.jobs.ListJobsByUser(ctx, userID, limit, offset)
}

func (o *Orchestrator) ownedJob(ctx context.Context, userID, jobID string) (*model.TranscriptionJob, error) {
	job, err := o.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	// other users' jobs are reported as missing
	if job.UserID != userID {
		return nil, apperrors.ErrJobNotFound
	}
	return job, nil
}

// Summarize generates, stores and meters a summary of a completed job
func (o *Orchestrator) Summarize(ctx context.Context, userID, jobID string) (*model.TranscriptionJob, error) {
	if o.summarizer == nil {
		return nil, apperrors.Wrap(apperrors.ErrMissingConfig, "summary provider is not configured")
	}
	job, err := o.ownedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusCompleted {
		return nil, apperrors.ErrJobNotCompleted
	}

	text, err := o.summarizer.Summarize(ctx, job.MeetingType, summary.ExtractText(job.Content))
	if err != nil {
		o.metrics.RecordSummary("error")
		return nil, err
	}

	now := o.now()
	if err := o.jobs.SaveSummary(ctx, job.ID, text, now); err != nil {
		return nil, err
	}
	job.Summary = text
	job.SummarizedAt = &now
	o.metrics.RecordSummary("ok")

	if err := o.usage.RecordForUser(ctx, userID, model.UsageSummary, 0); err != nil {
		if !errors.Is(err, apperrors.ErrUsageLimitExceeded) {
			return nil, err
		}
		o.logger.Warn("summary generated after quota was spent", zap.String("job_id", job.ID), zap.Error(err))
	}
	return job, nil
}
