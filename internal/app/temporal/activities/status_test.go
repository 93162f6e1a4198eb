package activities

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

type checkerFunc func(ctx context.Context, jobID string) (*model.TranscriptionJob, error)

func (f checkerFunc) CheckStatus(ctx context.Context, jobID string) (*model.TranscriptionJob, error) {
	return f(ctx, jobID)
}

func TestCheckJobStatus(t *testing.T) {
	tests := []struct {
		name         string
		job          *model.TranscriptionJob
		err          error
		want         CheckResult
		wantErr      bool
		nonRetryable bool
	}{
		{
			name: "in flight",
			job:  &model.TranscriptionJob{ID: "job-1", Status: model.JobStatusProcessing},
			want: CheckResult{JobID: "job-1", Status: "processing"},
		},
		{
			name: "errored check is not terminal",
			job:  &model.TranscriptionJob{ID: "job-1", Status: model.JobStatusError, ErrorCount: 2},
			want: CheckResult{JobID: "job-1", Status: "error", ErrorCount: 2},
		},
		{
			name: "completed",
			job:  &model.TranscriptionJob{ID: "job-1", Status: model.JobStatusCompleted},
			want: CheckResult{JobID: "job-1", Status: "completed", Terminal: true},
		},
		{
			name:    "store failure is retryable",
			err:     apperrors.ErrQueryFailed,
			wantErr: true,
		},
		{
			name:         "missing job is not retried",
			err:          apperrors.ErrJobNotFound,
			wantErr:      true,
			nonRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var suite testsuite.WorkflowTestSuite
			env := suite.NewTestActivityEnvironment()
			env.RegisterActivity(NewStatusActivities(checkerFunc(func(context.Context, string) (*model.TranscriptionJob, error) {
				return tt.job, tt.err
			})))

			val, err := env.ExecuteActivity(CheckJobStatusName, CheckRequest{JobID: "job-1"})
			if tt.wantErr {
				require.Error(t, err)
				if tt.nonRetryable {
					var appErr *temporal.ApplicationError
					require.True(t, errors.As(err, &appErr))
					assert.True(t, appErr.NonRetryable())
				}
				return
			}
			require.NoError(t, err)

			var got CheckResult
			require.NoError(t, val.Get(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}
