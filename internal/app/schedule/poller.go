package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lexscribe/internal/app/metrics"
	"lexscribe/internal/app/model"
)

// DefaultBatchSize bounds the number of jobs handled per run
const DefaultBatchSize = 200

// JobChecker is the part of the orchestrator the poller drives
type JobChecker interface {
	PollableJobs(ctx context.Context, limit int) ([]model.TranscriptionJob, error)
	CheckStatus(ctx context.Context, jobID string) (*model.TranscriptionJob, error)
}

// PollResult summarizes one poll run
type PollResult struct {
	Checked   int
	Completed int
	Failed    int
	Errors    int
}

// Poller advances in-flight jobs by checking each against the provider
type Poller struct {
	*Runner
	checker   JobChecker
	batchSize int
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewPoller creates a poller running every interval
func NewPoller(checker JobChecker, interval time.Duration, m *metrics.Metrics, logger *zap.Logger) *Poller {
	p := &Poller{
		checker:   checker,
		batchSize: DefaultBatchSize,
		metrics:   m,
		logger:    logger,
	}
	p.Runner = NewRunner("poller", interval, p.poll, logger)
	return p
}

// Poll runs one cycle and returns its result. It returns a zero result when
// another cycle is still running.
func (p *Poller) Poll(ctx context.Context) (PollResult, error) {
	var result PollResult
	_, err := p.exclusive(ctx, func(ctx context.Context) error {
		var err error
		result, err = p.run(ctx)
		return err
	})
	return result, err
}

func (p *Poller) poll(ctx context.Context) error {
	_, err := p.run(ctx)
	return err
}

func (p *Poller) run(ctx context.Context) (PollResult, error) {
	start := time.Now()
	result, err := p.cycle(ctx)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.metrics.RecordPollCycle(outcome, time.Since(start).Seconds())
	return result, err
}

// cycle checks every pollable job. A failing job is logged and counted and
// never stops the scan.
func (p *Poller) cycle(ctx context.Context) (PollResult, error) {
	var result PollResult

	jobs, err := p.checker.PollableJobs(ctx, p.batchSize)
	if err != nil {
		return result, err
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		checked, err := p.checker.CheckStatus(ctx, job.ID)
		if err != nil {
			result.Errors++
			p.logger.Error("status check failed", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		switch checked.Status {
		case model.JobStatusCompleted:
			result.Completed++
		case model.JobStatusFailed:
			result.Failed++
		case model.JobStatusError:
			result.Errors++
		}
	}

	if result.Checked > 0 {
		p.logger.Info("poll cycle finished",
			zap.Int("checked", result.Checked),
			zap.Int("completed", result.Completed),
			zap.Int("failed", result.Failed),
			zap.Int("errors", result.Errors),
		)
	}
	return result, nil
}
