// Package servicemock holds testify mocks of the v1 service interfaces.
package servicemock

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"

	"lexscribe/internal/api/v1/dto"
	"lexscribe/internal/app/billing"
	"lexscribe/internal/app/orchestrator"
)

// MockServices contains all mock services for testing
type MockServices struct {
	TranscriptionService *MockTranscriptionService
	SubscriptionService  *MockSubscriptionService
	ExportService        *MockExportService
}

// NewMockServices creates a new instance of mock services
func NewMockServices(t *testing.T) *MockServices {
	return &MockServices{
		TranscriptionService: NewMockTranscriptionService(t),
		SubscriptionService:  NewMockSubscriptionService(t),
		ExportService:        NewMockExportService(t),
	}
}

// MockTranscriptionService is a mock implementation of TranscriptionService
type MockTranscriptionService struct {
	mock.Mock
}

func NewMockTranscriptionService(t *testing.T) *MockTranscriptionService {
	m := &MockTranscriptionService{}
	m.Test(t)
	return m
}

func (m *MockTranscriptionService) SubmitDirect(ctx context.Context, meetingType string, files []orchestrator.AudioFile) (*dto.DirectSubmitResponse, error) {
	args := m.Called(ctx, meetingType, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DirectSubmitResponse), args.Error(1)
}

func (m *MockTranscriptionService) ProviderStatus(ctx context.Context, handle string) (*dto.ProviderStatusResponse, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProviderStatusResponse), args.Error(1)
}

func (m *MockTranscriptionService) Submit(ctx context.Context, userID string, decision *billing.Decision, meetingType string, files []orchestrator.AudioFile) (*dto.SubmitResponse, error) {
	args := m.Called(ctx, userID, decision, meetingType, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubmitResponse), args.Error(1)
}

func (m *MockTranscriptionService) GetTranscription(ctx context.Context, userID, id string) (*dto.JobResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobResponse), args.Error(1)
}

func (m *MockTranscriptionService) ListTranscriptions(ctx context.Context, userID string, query dto.ListJobsQuery) (*dto.PaginatedJobsResponse, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedJobsResponse), args.Error(1)
}

func (m *MockTranscriptionService) Summarize(ctx context.Context, userID, id string) (*dto.SummaryResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SummaryResponse), args.Error(1)
}

// MockSubscriptionService is a mock implementation of SubscriptionService
type MockSubscriptionService struct {
	mock.Mock
}

func NewMockSubscriptionService(t *testing.T) *MockSubscriptionService {
	m := &MockSubscriptionService{}
	m.Test(t)
	return m
}

func (m *MockSubscriptionService) Checkout(ctx context.Context, userID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CheckoutResponse), args.Error(1)
}

func (m *MockSubscriptionService) Cancel(ctx context.Context, userID string) (*dto.SubscriptionStatusResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubscriptionStatusResponse), args.Error(1)
}

func (m *MockSubscriptionService) Notify(ctx context.Context, remoteIP string, body []byte) error {
	args := m.Called(ctx, remoteIP, body)
	return args.Error(0)
}

func (m *MockSubscriptionService) Status(ctx context.Context, userID string) (*dto.SubscriptionStatusResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SubscriptionStatusResponse), args.Error(1)
}

func (m *MockSubscriptionService) Usage(ctx context.Context, userID string) (*dto.UsageResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UsageResponse), args.Error(1)
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	mock.Mock
}

func NewMockExportService(t *testing.T) *MockExportService {
	m := &MockExportService{}
	m.Test(t)
	return m
}

func (m *MockExportService) ExportTranscriptions(ctx context.Context, userID string, writer io.Writer) error {
	args := m.Called(ctx, userID, writer)
	if data, ok := args.Get(0).([]byte); ok {
		_, _ = writer.Write(data)
	}
	return args.Error(1)
}
