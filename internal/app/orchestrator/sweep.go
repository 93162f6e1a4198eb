package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"lexscribe/internal/app/model"
)

// PollableJobs returns in-flight jobs that still have status checks left
func (o *Orchestrator) PollableJobs(ctx context.Context, limit int) ([]model.TranscriptionJob, error) {
	return o.jobs.ListPollableJobs(ctx, o.opts.MaxStatusErrors, limit)
}

// SweepExpired deletes up to limit jobs whose retention ended, together with
// their blobs. A job whose blobs cannot be removed is kept for the next sweep.
func (o *Orchestrator) SweepExpired(ctx context.Context, limit int) (int, error) {
	jobs, err := o.jobs.ListExpiredJobs(ctx, o.now(), limit)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := o.purge(ctx, &job); err != nil {
			o.logger.Warn("failed to purge expired job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		o.metrics.RecordSweep(removed)
		o.logger.Info("expired jobs removed", zap.Int("count", removed), zap.Int("candidates", len(jobs)))
	}
	return removed, nil
}

func (o *Orchestrator) purge(ctx context.Context, job *model.TranscriptionJob) error {
	for _, key := range job.BlobKeys {
		if err := o.blobs.Delete(ctx, key); err != nil {
			return err
		}
	}
	return o.jobs.DeleteJob(ctx, job.ID)
}
