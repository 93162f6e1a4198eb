package orchestrator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lexscribe/internal/app/api/speech"
	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/testutil"
)

func TestCheckStatusSucceeded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := testutil.SeedJob(t, f.store, testutil.NewJob("job-1", "user-1", model.JobStatusSubmitted))

	tr := testutil.Transcription(speech.StatusSucceeded, "")
	f.provider.On("Status", mock.Anything, job.ProviderHandle).Return(tr, nil).Once()
	f.provider.On("Results", mock.Anything, tr).Return(testutil.Results(
		testutil.ResultPayload("Counsel for the plaintiff.", 90000),
		testutil.ResultPayload("Counsel for the defence.", 30000),
	), nil).Once()

	got, err := f.orch.CheckStatus(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	require.Len(t, got.Content, 2)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 120.0, got.DurationSeconds)

	stored, err := f.store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, stored.Status)
	assert.Len(t, stored.Content, 2)

	user, err := f.store.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, user.FreeTranscriptionSeconds)
}

func TestCheckStatusTerminalIsIdempotent(t *testing.T) {
	for _, status := range []model.JobStatus{model.JobStatusCompleted, model.JobStatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			testutil.SeedJob(t, f.store, testutil.NewJob("job-1", "user-1", status))

			got, err := f.orch.CheckStatus(context.Background(), "job-1")
			require.NoError(t, err)
			assert.Equal(t, status, got.Status)
			f.provider.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		status      speech.Status
		errMessage  string
		wantStatus  model.JobStatus
		wantReason  string
		wantDetails string
	}{
		{name: "not started", status: speech.StatusNotStarted, wantStatus: model.JobStatusProcessing},
		{name: "running", status: speech.StatusRunning, wantStatus: model.JobStatusProcessing},
		{name: "unlisted provider status", status: speech.Status("Queued"), wantStatus: model.JobStatusProcessing},
		{
			name:        "provider failed",
			status:      speech.StatusFailed,
			errMessage:  "audio unreadable",
			wantStatus:  model.JobStatusFailed,
			wantReason:  model.FailureReasonProvider,
			wantDetails: "InvalidData: audio unreadable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			job := testutil.SeedJob(t, f.store, testutil.NewJob("job-1", "user-1", model.JobStatusSubmitted))
			f.provider.On("Status", mock.Anything, job.ProviderHandle).Return(testutil.Transcription(tt.status, tt.errMessage), nil).Once()

			got, err := f.orch.CheckStatus(context.Background(), "job-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantReason, got.FailureReason)
			assert.Equal(t, tt.wantDetails, got.ErrorDetails)
			assert.Empty(t, got.Content)
		})
	}
}

func TestCheckStatusUnlistedStatusNeverFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := testutil.SeedJob(t, f.store, testutil.NewJob("job-1", "user-1", model.JobStatusSubmitted))
	f.provider.On("Status", mock.Anything, job.ProviderHandle).Return(testutil.Transcription(speech.Status("Queued"), ""), nil)

	for i := 0; i < 5; i++ {
		got, err := f.orch.CheckStatus(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusProcessing, got.Status)
		assert.Zero(t, got.ErrorCount)
		assert.Empty(t, got.FailureReason)
	}
}

func TestCheckStatusErrorsAreBounded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := testutil.SeedJob(t, f.store, testutil.NewJob("job-1", "user-1", model.JobStatusSubmitted))
	f.provider.On("Status", mock.Anything, job.ProviderHandle).Return(nil, apperrors.New("connection reset"))

	for i := 1; i < 3; i++ {
		got, err := f.orch.CheckStatus(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusError, got.Status)
		assert.Equal(t, i, got.ErrorCount)
		assert.Contains(t, got.ErrorDetails, "connection reset")
	}

	got, err := f.orch.CheckStatus(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.Equal(t, model.FailureReasonStatusExhausted, got.FailureReason)

	pollable, err := f.orch.PollableJobs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pollable)
}

func TestCheckStatusRecoversFromError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := testutil.NewJob("job-1", "user-1", model.JobStatusError)
	job.ErrorCount = 2
	testutil.SeedJob(t, f.store, job)
	f.provider.On("Status", mock.Anything, job.ProviderHandle).Return(testutil.Transcription(speech.StatusRunning, ""), nil).Once()

	got, err := f.orch.CheckStatus(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, got.Status)
	assert.Zero(t, got.ErrorCount)
	assert.Empty(t, got.ErrorDetails)
}

func TestCheckStatusFetchFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	job := testutil.SeedJob(t, f.store, testutil.NewJob("job-1", "user-1", model.JobStatusProcessing))
	tr := testutil.Transcription(speech.StatusSucceeded, "")
	f.provider.On("Status", mock.Anything, job.ProviderHandle).Return(tr, nil).Once()
	f.provider.On("Results", mock.Anything, tr).Return(nil, apperrors.ErrResponseInvalid).Once()

	got, err := f.orch.CheckStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusError, got.Status)
	assert.Empty(t, got.Content)
	assert.Nil(t, got.CompletedAt)
}

func TestCheckStatusMissingHandle(t *testing.T) {
	f := newFixture(t)
	job := testutil.NewJob("job-1", "user-1", model.JobStatusPending)
	job.ProviderHandle = ""
	testutil.SeedJob(t, f.store, job)

	got, err := f.orch.CheckStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusError, got.Status)
	assert.Contains(t, got.ErrorDetails, apperrors.ErrMissingHandle.Error())
}

func TestCheckStatusNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.CheckStatus(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestGetJobOwnershipAndOnDemandCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := testutil.SeedJob(t, f.store, testutil.NewJob("job-1", "user-1", model.JobStatusSubmitted))
	f.provider.On("Status", mock.Anything, job.ProviderHandle).Return(testutil.Transcription(speech.StatusRunning, ""), nil).Once()

	_, err := f.orch.GetJob(ctx, "user-2", "job-1")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)

	got, err := f.orch.GetJob(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, got.Status)
	f.provider.AssertExpectations(t)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := testutil.NewJob("job-1", "user-1", model.JobStatusCompleted)
	job.MeetingType = model.MeetingTypeMeeting
	job.Content = []json.RawMessage{testutil.ResultPayload("We agreed to ship on Friday.", 1000)}
	testutil.SeedJob(t, f.store, job)

	f.summarizer.On("Summarize", mock.Anything, model.MeetingTypeMeeting, "We agreed to ship on Friday.").
		Return("Decision: ship Friday.", nil).Once()

	got, err := f.orch.Summarize(ctx, "user-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Decision: ship Friday.", got.Summary)
	require.NotNil(t, got.SummarizedAt)

	stored, err := f.store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Decision: ship Friday.", stored.Summary)
}

func TestSummarizeRequiresCompletedOwnedJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.SeedJob(t, f.store, testutil.NewJob("job-1", "user-1", model.JobStatusProcessing))

	_, err := f.orch.Summarize(ctx, "user-1", "job-1")
	assert.ErrorIs(t, err, apperrors.ErrJobNotCompleted)

	_, err = f.orch.Summarize(ctx, "user-2", "job-1")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
	f.summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
}
