package tracking

import (
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"lexscribe/internal/app/temporal/activities"
	"lexscribe/internal/app/temporal/workflows"
)

// NewWorker creates a worker on taskQueue that runs tracking workflows against checker
func NewWorker(c client.Client, taskQueue string, checker activities.JobStatusChecker) worker.Worker {
	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.TrackJobWorkflow)
	w.RegisterActivity(activities.NewStatusActivities(checker))
	return w
}
