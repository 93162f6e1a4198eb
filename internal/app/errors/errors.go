package errors

import (
	"fmt"
)

// Common error types
var (
	// Configuration errors
	ErrMissingConfig = New("configuration is required")
	ErrInvalidConfig = New("invalid configuration")

	// Input errors
	ErrInvalidInput       = New("invalid input")
	ErrNoFiles            = New("at least one audio file is required")
	ErrInvalidMeetingType = New("invalid meeting type")
	ErrInvalidPlan        = New("invalid plan")

	// Record errors
	ErrJobNotFound          = New("transcription job not found")
	ErrSubscriptionNotFound = New("subscription not found")
	ErrUserNotFound         = New("user not found")
	ErrJobNotCompleted      = New("transcription job is not completed")
	ErrStaleUpdate          = New("record changed concurrently")

	// Billing errors
	ErrUsageLimitExceeded   = New("usage limit exceeded")
	ErrSubscriptionRequired = New("active subscription required")
	ErrSubscriptionExpired  = New("subscription expired")
	ErrNotificationInvalid  = New("payment notification invalid")
	ErrNotificationSource   = New("payment notification from untrusted source")

	// Provider errors
	ErrProviderRejected = New("provider rejected request")
	ErrProviderTimeout  = New("provider timeout")
	ErrMissingHandle    = New("transcription handle is missing")
	ErrResponseInvalid  = New("invalid response")
	ErrSubmissionFailed = New("transcription submission failed")

	// Storage errors
	ErrUploadFailed = New("upload failed")

	// Database errors
	ErrDatabaseConnection = New("database connection failed")
	ErrQueryFailed        = New("query failed")
	ErrInsertFailed       = New("insert failed")
	ErrUpdateFailed       = New("update failed")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Mark attaches a sentinel to err so that errors.Is matches both
func Mark(err error, sentinel *Error) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: sentinel.message,
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Mark(Newf("%s is required", field), ErrInvalidInput)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Mark(Newf("%s is invalid: %s", field, reason), ErrInvalidInput)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return Newf("%s not found: %s", itemType, identifier)
}
