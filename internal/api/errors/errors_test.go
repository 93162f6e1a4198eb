package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "lexscribe/internal/app/errors"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "usage limit", err: apperrors.ErrUsageLimitExceeded, status: http.StatusTooManyRequests, code: CodeUsageLimitExceeded},
		{name: "expired", err: apperrors.ErrSubscriptionExpired, status: http.StatusForbidden, code: CodeSubscriptionExpired},
		{name: "required", err: apperrors.ErrSubscriptionRequired, status: http.StatusForbidden, code: CodeSubscriptionRequired},
		{name: "untrusted source", err: apperrors.ErrNotificationSource, status: http.StatusForbidden, code: CodeUntrustedSource},
		{name: "bad signature", err: apperrors.Wrap(apperrors.ErrNotificationInvalid, "signature mismatch"), status: http.StatusBadRequest, code: CodeInvalidSignature},
		{name: "job not found", err: apperrors.ErrJobNotFound, status: http.StatusNotFound},
		{name: "not completed", err: apperrors.ErrJobNotCompleted, status: http.StatusConflict, code: CodeJobNotCompleted},
		{name: "no files", err: apperrors.ErrNoFiles, status: http.StatusBadRequest},
		{name: "invalid field", err: apperrors.InvalidField("plan", "unknown"), status: http.StatusBadRequest},
		{name: "submission", err: apperrors.Mark(fmt.Errorf("dial tcp: refused"), apperrors.ErrSubmissionFailed), status: http.StatusBadGateway, code: CodeSubmissionFailed},
		{name: "upload", err: apperrors.Mark(fmt.Errorf("bucket missing"), apperrors.ErrUploadFailed), status: http.StatusInternalServerError, code: CodeUploadFailed},
		{name: "summaries off", err: apperrors.ErrMissingConfig, status: http.StatusServiceUnavailable, code: CodeSummaryUnavailable},
		{name: "unknown", err: fmt.Errorf("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromDomain(tt.err, false)
			assert.Equal(t, tt.status, apiErr.HTTPStatus())
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

func TestFromDomainDetails(t *testing.T) {
	err := apperrors.Mark(fmt.Errorf("provider said 401"), apperrors.ErrSubmissionFailed)

	hidden := FromDomain(err, false)
	assert.Empty(t, hidden.Details)
	assert.Equal(t, "Failed to submit transcription", hidden.Message)

	shown := FromDomain(err, true)
	assert.Contains(t, shown.Details["error"], "provider said 401")

	// client errors never carry upstream details
	assert.Empty(t, FromDomain(apperrors.ErrJobNotFound, true).Details)
}

func TestFromDomainKeepsAPIError(t *testing.T) {
	orig := NewBadRequestError("bad").WithCode("custom")
	assert.Same(t, orig, FromDomain(fmt.Errorf("wrapped: %w", orig), true))
	assert.Nil(t, FromDomain(nil, true))
}
