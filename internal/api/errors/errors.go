package errors

import (
	"fmt"
	"net/http"
)

// Error codes returned alongside the kind
const (
	CodeUsageLimitExceeded   = "usage_limit_exceeded"
	CodeSubscriptionRequired = "subscription_required"
	CodeSubscriptionExpired  = "subscription_expired"
	CodeJobNotCompleted      = "job_not_completed"
	CodeSubmissionFailed     = "transcription_submission_failed"
	CodeUploadFailed         = "upload_failed"
	CodeProviderError        = "provider_error"
	CodeInvalidSignature     = "invalid_notification"
	CodeUntrustedSource      = "untrusted_source"
	CodeSummaryUnavailable   = "summary_unavailable"
)

// ErrorKind classifies an error and selects its HTTP status
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindForbidden          ErrorKind = "forbidden"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
	KindTooManyRequests    ErrorKind = "too_many_requests"
	KindBadGateway         ErrorKind = "bad_gateway"
)

// APIError is the JSON error body returned by every endpoint
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
}

var kindStatus = map[ErrorKind]int{
	KindValidation:         http.StatusUnprocessableEntity,
	KindBadRequest:         http.StatusBadRequest,
	KindNotFound:           http.StatusNotFound,
	KindUnauthorized:       http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindConflict:           http.StatusConflict,
	KindTooManyRequests:    http.StatusTooManyRequests,
	KindInternal:           http.StatusInternalServerError,
	KindBadGateway:         http.StatusBadGateway,
	KindServiceUnavailable: http.StatusServiceUnavailable,
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus maps the kind to a status code; unknown kinds are 500
func (e *APIError) HTTPStatus() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New creates an error of the given kind
func New(kind ErrorKind, message string) *APIError {
	return &APIError{Kind: kind, Message: message}
}

// NewValidationError creates a validation error with per-field details
func NewValidationError(message string, fields map[string]string) *APIError {
	e := New(KindValidation, message)
	e.Details = fields
	return e
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(resource string) *APIError {
	return New(KindNotFound, fmt.Sprintf("%s not found", resource))
}

func NewUnauthorizedError(message string) *APIError { return New(KindUnauthorized, message) }

func NewForbiddenError(message string) *APIError { return New(KindForbidden, message) }

func NewConflictError(message string) *APIError { return New(KindConflict, message) }

func NewInternalError(message string) *APIError { return New(KindInternal, message) }

func NewBadRequestError(message string) *APIError { return New(KindBadRequest, message) }

func NewTooManyRequestsError(message string) *APIError { return New(KindTooManyRequests, message) }

func NewBadGatewayError(message string) *APIError { return New(KindBadGateway, message) }

func NewServiceUnavailableError(message string) *APIError {
	return New(KindServiceUnavailable, message)
}

// WithCode sets the machine readable error code
func (e *APIError) WithCode(code string) *APIError {
	e.Code = code
	return e
}

// WithDetail adds one detail entry
func (e *APIError) WithDetail(key, value string) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}
