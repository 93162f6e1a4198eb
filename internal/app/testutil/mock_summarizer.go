package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"lexscribe/internal/app/model"
)

// MockSummarizer is a testify mock of the summarizer
type MockSummarizer struct {
	mock.Mock
}

func NewMockSummarizer(t *testing.T) *MockSummarizer {
	m := &MockSummarizer{}
	m.Test(t)
	return m
}

func (m *MockSummarizer) Summarize(ctx context.Context, meetingType model.MeetingType, transcript string) (string, error) {
	args := m.Called(ctx, meetingType, transcript)
	return args.String(0), args.Error(1)
}
