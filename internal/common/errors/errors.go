// Package errors provides the error taxonomy shared by the contact relay and
// the page handlers, and its mapping onto HTTP responses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidPayload       ErrorCode = "INVALID_PAYLOAD"
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeServiceNotConfigured ErrorCode = "SERVICE_NOT_CONFIGURED"
	ErrCodeUpstreamFailed       ErrorCode = "UPSTREAM_FAILED"
	ErrCodeDuplicateSubmission  ErrorCode = "DUPLICATE_SUBMISSION"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// Client-facing messages. These are returned verbatim in the response body.
const (
	MsgInvalidPayload       = "Invalid request payload."
	MsgAllFieldsRequired    = "All fields are required."
	MsgInvalidEmail         = "Invalid email address."
	MsgInvalidBudgetRange   = "Invalid budget range."
	MsgServiceNotConfigured = "Email service is not configured."
	MsgUpstreamFailed       = "Unable to send inquiry right now."
	MsgDuplicateSubmission  = "This inquiry was already submitted."
	MsgInternal             = "Something went wrong. Please try again."
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidPayloadError reports a body that is not a JSON object of strings.
func NewInvalidPayloadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   MsgInvalidPayload,
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewValidationError reports a missing or malformed field. message is the
// client-facing text.
func NewValidationError(message, field string) *StandardError {
	e := &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	if field != "" {
		e.Details = fmt.Sprintf("field: %s", field)
		e.WithMetadata("field", field)
	}
	return e
}

// NewServiceNotConfiguredError reports a deployment precondition failure.
func NewServiceNotConfiguredError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceNotConfigured,
		Message:   MsgServiceNotConfigured,
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUpstreamError reports a notification channel that was unreachable or
// rejected the inquiry.
func NewUpstreamError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamFailed,
		Message:   MsgUpstreamFailed,
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDuplicateSubmissionError reports an idempotency key seen before.
func NewDuplicateSubmissionError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateSubmission,
		Message:   MsgDuplicateSubmission,
		Details:   fmt.Sprintf("idempotencyKey: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   MsgInternal,
		Details:   errDetails(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Classification
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err is a StandardError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// HTTPStatus maps a code onto the response status class.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidPayload, ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeDuplicateSubmission:
		return http.StatusConflict
	case ErrCodeUpstreamFailed:
		return http.StatusBadGateway
	case ErrCodeServiceNotConfigured:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory tells who can act on an error: the submitter, the
// operator or nobody until the upstream recovers.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidPayload, ErrCodeValidationFailed, ErrCodeDuplicateSubmission:
		return "client"
	case ErrCodeServiceNotConfigured:
		return "operator"
	case ErrCodeUpstreamFailed:
		return "upstream"
	default:
		return "internal"
	}
}

// IsUserFixable reports whether the submitter can correct the request.
func IsUserFixable(code ErrorCode) bool {
	return GetErrorCategory(code) == "client"
}
