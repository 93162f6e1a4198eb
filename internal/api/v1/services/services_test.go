package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"lexscribe/internal/api/errors"
	"lexscribe/internal/api/v1/dto"
	"lexscribe/internal/app/api/speech"
	"lexscribe/internal/app/billing"
	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/orchestrator"
	"lexscribe/internal/config"
)

type fakeOrchestrator struct {
	submitted  *orchestrator.SubmitInput
	submitErr  error
	jobs       []model.TranscriptionJob
	listCalls  [][2]int
	getErr     error
	summaryErr error
}

func (f *fakeOrchestrator) Submit(_ context.Context, in orchestrator.SubmitInput) (*model.TranscriptionJob, error) {
	f.submitted = &in
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	expires := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)
	return &model.TranscriptionJob{ID: "job-1", ProviderHandle: "https://speech.test/t/1", Status: model.JobStatusSubmitted, ExpiresAt: &expires}, nil
}

func (f *fakeOrchestrator) SubmitDirect(_ context.Context, _ model.MeetingType, _ []orchestrator.AudioFile) (string, error) {
	return "https://speech.test/t/2", f.submitErr
}

func (f *fakeOrchestrator) ProviderStatus(_ context.Context, handle string) (speech.Status, error) {
	if handle == "" {
		return "", apperrors.ErrMissingHandle
	}
	return speech.StatusRunning, nil
}

func (f *fakeOrchestrator) GetJob(_ context.Context, _, jobID string) (*model.TranscriptionJob, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &model.TranscriptionJob{ID: jobID, Status: model.JobStatusCompleted}, nil
}

func (f *fakeOrchestrator) ListJobs(_ context.Context, _ string, limit, offset int) ([]model.TranscriptionJob, int, error) {
	f.listCalls = append(f.listCalls, [2]int{limit, offset})
	if offset >= len(f.jobs) {
		return nil, len(f.jobs), nil
	}
	end := offset + limit
	if end > len(f.jobs) {
		end = len(f.jobs)
	}
	return f.jobs[offset:end], len(f.jobs), nil
}

func (f *fakeOrchestrator) Summarize(_ context.Context, _, jobID string) (*model.TranscriptionJob, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return &model.TranscriptionJob{ID: jobID, MeetingType: model.MeetingTypeLegal, Summary: "done"}, nil
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	apiErr, ok := err.(*errors.APIError)
	require.True(t, ok, "expected an APIError, got %T", err)
	return apiErr.HTTPStatus()
}

func TestTranscriptionService_Submit(t *testing.T) {
	decision := &billing.Decision{
		Outcome: billing.OutcomeAllow,
		Plan:    model.PlanProfessional,
		Limits:  config.PlanLimits{TranscriptionHours: 30, RetentionDays: 90},
	}

	orch := &fakeOrchestrator{}
	svc := NewTranscriptionService(orch, false)

	resp, err := svc.Submit(context.Background(), "user-1", decision, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.TranscriptionID)
	assert.Equal(t, "allow", resp.Usage.Outcome)
	require.NotNil(t, orch.submitted)
	assert.Equal(t, 90, orch.submitted.RetentionDays)
	assert.Equal(t, model.MeetingTypeLegal, orch.submitted.MeetingType)

	_, err = svc.Submit(context.Background(), "user-1", decision, "deposition", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	_, err = svc.Submit(context.Background(), "user-1", nil, "legal", nil)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestTranscriptionService_SubmitFailureDetails(t *testing.T) {
	cause := apperrors.Mark(fmt.Errorf("provider said 401"), apperrors.ErrSubmissionFailed)
	decision := &billing.Decision{Outcome: billing.OutcomeAllow}

	_, err := NewTranscriptionService(&fakeOrchestrator{submitErr: cause}, false).
		Submit(context.Background(), "user-1", decision, "legal", nil)
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err))
	assert.Empty(t, err.(*errors.APIError).Details)

	_, err = NewTranscriptionService(&fakeOrchestrator{submitErr: cause}, true).
		Submit(context.Background(), "user-1", decision, "legal", nil)
	assert.Contains(t, err.(*errors.APIError).Details["error"], "provider said 401")
}

func TestTranscriptionService_Reads(t *testing.T) {
	orch := &fakeOrchestrator{jobs: make([]model.TranscriptionJob, 25)}
	svc := NewTranscriptionService(orch, false)

	list, err := svc.ListTranscriptions(context.Background(), "user-1", dto.ListJobsQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list.Transcriptions, 5)
	assert.Equal(t, [2]int{10, 20}, orch.listCalls[0])
	assert.Equal(t, 3, list.Pagination.TotalPages)
	assert.False(t, list.Pagination.HasNext)
	assert.True(t, list.Pagination.HasPrev)

	status, err := svc.ProviderStatus(context.Background(), "https://speech.test/t/1")
	require.NoError(t, err)
	assert.Equal(t, "Running", status.Status)

	_, err = svc.ProviderStatus(context.Background(), "")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	orch.getErr = apperrors.ErrJobNotFound
	_, err = svc.GetTranscription(context.Background(), "user-1", "job-9")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	orch.summaryErr = apperrors.ErrJobNotCompleted
	_, err = svc.Summarize(context.Background(), "user-1", "job-9")
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

type fakeBilling struct {
	checkoutErr error
	notifyErr   error
	verifyErr   error
	handled     *billing.Notification
}

func (f *fakeBilling) Checkout(_ context.Context, _ string, planID model.PlanID) (*billing.Checkout, error) {
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &billing.Checkout{
		SubscriptionID: "sub-1",
		ProcessURL:     "https://sandbox.payfast.co.za/eng/process",
		Fields:         []billing.Field{{Key: "merchant_id", Value: "10000100"}, {Key: "amount", Value: "199.00"}},
	}, nil
}

func (f *fakeBilling) Cancel(_ context.Context, _ string) (*model.Subscription, error) {
	return nil, apperrors.ErrSubscriptionRequired
}

func (f *fakeBilling) HandleNotification(_ context.Context, n *billing.Notification) error {
	f.handled = n
	return f.notifyErr
}

func (f *fakeBilling) Verify(_ string, _ []byte) (*billing.Notification, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &billing.Notification{SubscriptionID: "sub-1", PaymentID: "p-1", Status: billing.PaymentComplete}, nil
}

func (f *fakeBilling) Status(_ context.Context, _ string) (*billing.SubscriptionStatus, error) {
	return nil, apperrors.ErrSubscriptionExpired
}

func (f *fakeBilling) Usage(_ context.Context, _ string) (*billing.UsageStats, error) {
	return &billing.UsageStats{
		PlanID: model.PlanBasic,
		Limits: config.PlanLimits{TranscriptionHours: 10, RetentionDays: 30},
		Usage:  model.Usage{TranscriptionSeconds: 5400},
	}, nil
}

func TestSubscriptionService(t *testing.T) {
	fb := &fakeBilling{}
	svc := NewSubscriptionService(fb, fb, fb, zap.NewNop())
	ctx := context.Background()

	checkout, err := svc.Checkout(ctx, "user-1", &dto.CheckoutRequest{PlanID: "basic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"merchant_id", "amount"}, checkout.FieldOrder)
	assert.Equal(t, "199.00", checkout.Fields["amount"])

	usage, err := svc.Usage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1.5, usage.UsedHours)

	_, err = svc.Status(ctx, "user-1")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = svc.Cancel(ctx, "user-1")
	assert.Equal(t, errors.CodeSubscriptionRequired, err.(*errors.APIError).Code)

	require.NoError(t, svc.Notify(ctx, "197.97.145.144", []byte("m_payment_id=sub-1")))
	assert.Equal(t, "p-1", fb.handled.PaymentID)

	fb.handled = nil
	fb.verifyErr = apperrors.ErrNotificationSource
	err = svc.Notify(ctx, "203.0.113.9", []byte("m_payment_id=sub-1"))
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.Nil(t, fb.handled, "rejected notifications must not reach the subscription")

	fb.verifyErr = nil
	fb.checkoutErr = apperrors.Wrap(apperrors.ErrInvalidPlan, "platinum")
	_, err = svc.Checkout(ctx, "user-1", &dto.CheckoutRequest{PlanID: "platinum"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestExportService(t *testing.T) {
	jobs := make([]model.TranscriptionJob, exportPageSize+5)
	for i := range jobs {
		jobs[i] = model.TranscriptionJob{ID: fmt.Sprintf("job-%d", i), Status: model.JobStatusCompleted}
	}
	orch := &fakeOrchestrator{jobs: jobs}

	var buf bytes.Buffer
	require.NoError(t, NewExportService(orch).ExportTranscriptions(context.Background(), "user-1", &buf))
	assert.Len(t, orch.listCalls, 2)

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, file.Sheets[0].Rows, len(jobs)+1)
}
