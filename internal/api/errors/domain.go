package errors

import (
	"errors"

	apperrors "lexscribe/internal/app/errors"
)

// FromDomain translates a domain error into an API error. Upstream details
// are attached to server side failures only when exposeDetails is set.
func FromDomain(err error, exposeDetails bool) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, apperrors.ErrUsageLimitExceeded):
		return NewTooManyRequestsError("Usage limit exceeded for the current billing period").WithCode(CodeUsageLimitExceeded)
	case errors.Is(err, apperrors.ErrSubscriptionExpired):
		return NewForbiddenError("Subscription has expired").WithCode(CodeSubscriptionExpired)
	case errors.Is(err, apperrors.ErrSubscriptionRequired):
		return NewForbiddenError("An active subscription is required").WithCode(CodeSubscriptionRequired)
	case errors.Is(err, apperrors.ErrNotificationSource):
		return NewForbiddenError("Notification source is not allowed").WithCode(CodeUntrustedSource)
	case errors.Is(err, apperrors.ErrNotificationInvalid):
		return NewBadRequestError("Invalid payment notification").WithCode(CodeInvalidSignature)
	case errors.Is(err, apperrors.ErrJobNotFound):
		return NewNotFoundError("Transcription")
	case errors.Is(err, apperrors.ErrSubscriptionNotFound):
		return NewNotFoundError("Subscription")
	case errors.Is(err, apperrors.ErrUserNotFound):
		return NewNotFoundError("User")
	case errors.Is(err, apperrors.ErrJobNotCompleted):
		return NewConflictError("Transcription is not completed yet").WithCode(CodeJobNotCompleted)
	case errors.Is(err, apperrors.ErrNoFiles),
		errors.Is(err, apperrors.ErrInvalidMeetingType),
		errors.Is(err, apperrors.ErrInvalidPlan),
		errors.Is(err, apperrors.ErrMissingHandle),
		errors.Is(err, apperrors.ErrInvalidInput):
		return NewBadRequestError(err.Error())
	case errors.Is(err, apperrors.ErrMissingConfig):
		return serverError(NewServiceUnavailableError("Feature is not available").WithCode(CodeSummaryUnavailable), err, exposeDetails)
	case errors.Is(err, apperrors.ErrSubmissionFailed):
		return serverError(NewBadGatewayError("Failed to submit transcription").WithCode(CodeSubmissionFailed), err, exposeDetails)
	case errors.Is(err, apperrors.ErrUploadFailed):
		return serverError(NewInternalError("Failed to store audio").WithCode(CodeUploadFailed), err, exposeDetails)
	case errors.Is(err, apperrors.ErrProviderRejected),
		errors.Is(err, apperrors.ErrProviderTimeout),
		errors.Is(err, apperrors.ErrResponseInvalid):
		return serverError(NewBadGatewayError("Transcription provider error").WithCode(CodeProviderError), err, exposeDetails)
	}

	return serverError(NewInternalError("Internal server error"), err, exposeDetails)
}

func serverError(apiErr *APIError, cause error, exposeDetails bool) *APIError {
	if exposeDetails {
		apiErr.WithDetail("error", cause.Error())
	}
	return apiErr
}
