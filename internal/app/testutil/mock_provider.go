package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"lexscribe/internal/app/api/speech"
)

// MockProvider is a testify mock of the batch transcription provider
type MockProvider struct {
	mock.Mock
}

func NewMockProvider(t *testing.T) *MockProvider {
	m := &MockProvider{}
	m.Test(t)
	return m
}

func (m *MockProvider) Submit(ctx context.Context, urls []string, opts speech.Options) (string, error) {
	args := m.Called(ctx, urls, opts)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Status(ctx context.Context, handle string) (*speech.Transcription, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*speech.Transcription), args.Error(1)
}

func (m *MockProvider) Results(ctx context.Context, t *speech.Transcription) ([]speech.Result, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]speech.Result), args.Error(1)
}
