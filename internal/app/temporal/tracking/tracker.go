package tracking

import (
	"context"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"lexscribe/internal/app/temporal/workflows"
)

// WorkflowStarter is the part of client.Client the tracker uses
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Tracker starts a TrackJobWorkflow for each submitted job
type Tracker struct {
	starter   WorkflowStarter
	taskQueue string
	interval  time.Duration
	logger    *zap.Logger
}

// NewTracker creates a tracker that checks jobs every interval
func NewTracker(starter WorkflowStarter, taskQueue string, interval time.Duration, logger *zap.Logger) *Tracker {
	return &Tracker{
		starter:   starter,
		taskQueue: taskQueue,
		interval:  interval,
		logger:    logger,
	}
}

// WorkflowID is the tracking workflow id of a job
func WorkflowID(jobID string) string {
	return "track-job-" + jobID
}

// Track starts the tracking workflow of a job
func (t *Tracker) Track(ctx context.Context, jobID string) error {
	id := WorkflowID(jobID)
	_, err := t.starter.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        id,
		TaskQueue: t.taskQueue,
	}, workflows.TrackJobWorkflow, workflows.TrackJobRequest{
		JobID:    jobID,
		Interval: t.interval,
	})
	if err != nil {
		return err
	}

	t.logger.Debug("tracking workflow started", zap.String("job_id", jobID), zap.String("workflow_id", id))
	return nil
}
