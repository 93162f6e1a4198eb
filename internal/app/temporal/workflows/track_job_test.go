package workflows

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/temporal/activities"
)

type scriptedChecker struct {
	mu       sync.Mutex
	statuses []model.JobStatus
	err      error
	calls    int
}

func (c *scriptedChecker) CheckStatus(_ context.Context, jobID string) (*model.TranscriptionJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	status := c.statuses[len(c.statuses)-1]
	if c.calls <= len(c.statuses) {
		status = c.statuses[c.calls-1]
	}
	return &model.TranscriptionJob{ID: jobID, Status: status}, nil
}

func runTrackJob(t *testing.T, checker *scriptedChecker, req TrackJobRequest) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(TrackJobWorkflow)
	env.RegisterActivity(activities.NewStatusActivities(checker))
	env.ExecuteWorkflow(TrackJobWorkflow, req)
	require.True(t, env.IsWorkflowCompleted())
	return env
}

func TestTrackJobWorkflowStopsAtTerminalStatus(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []model.JobStatus
		wantStatus string
		wantChecks int
	}{
		{
			name:       "completes after processing",
			statuses:   []model.JobStatus{model.JobStatusSubmitted, model.JobStatusProcessing, model.JobStatusCompleted},
			wantStatus: "completed",
			wantChecks: 3,
		},
		{
			name:       "already failed",
			statuses:   []model.JobStatus{model.JobStatusFailed},
			wantStatus: "failed",
			wantChecks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &scriptedChecker{statuses: tt.statuses}
			env := runTrackJob(t, checker, TrackJobRequest{JobID: "job-1", Interval: time.Minute})
			require.NoError(t, env.GetWorkflowError())

			var result TrackJobResult
			require.NoError(t, env.GetWorkflowResult(&result))
			assert.Equal(t, "job-1", result.JobID)
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantChecks, result.Checks)
			assert.False(t, result.Abandoned)
		})
	}
}

func TestTrackJobWorkflowGivesUpAfterMaxChecks(t *testing.T) {
	checker := &scriptedChecker{statuses: []model.JobStatus{model.JobStatusProcessing}}
	env := runTrackJob(t, checker, TrackJobRequest{JobID: "job-2", Interval: time.Second, MaxChecks: 4})
	require.NoError(t, env.GetWorkflowError())

	var result TrackJobResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.True(t, result.Abandoned)
	assert.Equal(t, 4, result.Checks)
	assert.Equal(t, "processing", result.Status)
}

func TestTrackJobWorkflowEndsWhenJobIsGone(t *testing.T) {
	checker := &scriptedChecker{err: apperrors.ErrJobNotFound}
	env := runTrackJob(t, checker, TrackJobRequest{JobID: "job-3"})

	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, 1, checker.calls)
}
