package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"lexscribe/internal/app/temporal/activities"
)

const (
	defaultCheckInterval = time.Minute
	// checks per run before the history is reset with continue-as-new
	checksPerRun = 500
	// 48 hours at the default interval
	defaultMaxChecks = 2880
)

// TrackJobRequest is the input of TrackJobWorkflow
type TrackJobRequest struct {
	JobID     string        `json:"job_id"`
	Interval  time.Duration `json:"interval"`
	MaxChecks int           `json:"max_checks"`
	// Checks already run by earlier runs of the same workflow
	Checks int `json:"checks"`
}

// TrackJobResult is the output of TrackJobWorkflow
type TrackJobResult struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Checks    int    `json:"checks"`
	Abandoned bool   `json:"abandoned,omitempty"`
}

// TrackJobWorkflow checks one job at a fixed interval until it is completed or failed.
// Tracking gives up after MaxChecks; the ticker poller still covers the job.
func TrackJobWorkflow(ctx workflow.Context, req TrackJobRequest) (TrackJobResult, error) {
	logger := workflow.GetLogger(ctx)

	interval := req.Interval
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	maxChecks := req.MaxChecks
	if maxChecks <= 0 {
		maxChecks = defaultMaxChecks
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	})

	result := TrackJobResult{JobID: req.JobID, Checks: req.Checks}
	for run := 0; ; run++ {
		if result.Checks >= maxChecks {
			logger.Warn("Giving up tracking job", "jobId", req.JobID, "checks", result.Checks)
			result.Abandoned = true
			return result, nil
		}
		if run >= checksPerRun {
			next := req
			next.Checks = result.Checks
			return result, workflow.NewContinueAsNewError(ctx, TrackJobWorkflow, next)
		}

		var check activities.CheckResult
		err := workflow.ExecuteActivity(ctx, activities.CheckJobStatusName, activities.CheckRequest{JobID: req.JobID}).Get(ctx, &check)
		result.Checks++
		if err != nil {
			var appErr *temporal.ApplicationError
			if isNonRetryable(err, &appErr) {
				logger.Warn("Stopped tracking job", "jobId", req.JobID, "reason", appErr.Type())
				return result, err
			}
			// transient failures are retried on the next tick
			logger.Warn("Status check activity failed", "jobId", req.JobID, "error", err)
		} else {
			result.Status = check.Status
			if check.Terminal {
				logger.Info("Tracked job finished", "jobId", req.JobID, "status", check.Status, "checks", result.Checks)
				return result, nil
			}
		}

		if err := workflow.Sleep(ctx, interval); err != nil {
			return result, err
		}
	}
}

func isNonRetryable(err error, target **temporal.ApplicationError) bool {
	return errors.As(err, target) && (*target).NonRetryable()
}
