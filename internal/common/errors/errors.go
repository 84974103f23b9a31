// Package errors provides standardized, user-displayable error handling for
// the lead submission pipeline and the CMS integration.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLeadValidationFailed    ErrorCode = "LEAD_VALIDATION_FAILED"
	ErrCodeBackendValidationFailed ErrorCode = "BACKEND_VALIDATION_FAILED"
	ErrCodePermissionDenied        ErrorCode = "PERMISSION_DENIED"
	ErrCodeServerFault             ErrorCode = "SERVER_FAULT"
	ErrCodeNetworkUnreachable      ErrorCode = "NETWORK_UNREACHABLE"
	ErrCodeSchemaViolation         ErrorCode = "SCHEMA_VIOLATION"
	ErrCodeSubmissionInFlight      ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeSessionNotFound         ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeModalNotOpen            ErrorCode = "MODAL_NOT_OPEN"
)

// FieldError carries one per-field message, either produced locally or
// surfaced verbatim from the backend's validation detail.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// StandardError represents a structured application error. UserMessage is
// what an end user may see; Details stays operator-facing.
type StandardError struct {
	Code        ErrorCode    `json:"code"`
	UserMessage string       `json:"userMessage"`
	Details     string       `json:"details,omitempty"`
	Retryable   bool         `json:"retryable"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.UserMessage)
}

// CodeOf extracts the ErrorCode from err, or "" when err is not a StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// NewLeadValidationFailedError reports client-side validation failures. The
// record never left the process; no network call was made.
func NewLeadValidationFailedError(fieldErrors []FieldError) *StandardError {
	return &StandardError{
		Code:        ErrCodeLeadValidationFailed,
		UserMessage: "Please correct the highlighted fields and try again.",
		Retryable:   false,
		FieldErrors: fieldErrors,
		Timestamp:   time.Now().UTC(),
	}
}

// NewBackendValidationFailedError surfaces the backend's per-field messages
// verbatim.
func NewBackendValidationFailedError(message string, fieldErrors []FieldError) *StandardError {
	userMessage := message
	if userMessage == "" {
		userMessage = "The backend rejected the submitted fields."
	}
	return &StandardError{
		Code:        ErrCodeBackendValidationFailed,
		UserMessage: userMessage,
		Retryable:   false,
		FieldErrors: fieldErrors,
		Timestamp:   time.Now().UTC(),
	}
}

// NewPermissionDeniedError reports an HTTP 403 from the backend. This is an
// operator-facing misconfiguration, not a user-input problem.
func NewPermissionDeniedError(details string) *StandardError {
	return &StandardError{
		Code:        ErrCodePermissionDenied,
		UserMessage: "Submission rejected: the backend denied public create access for leads. Check the CMS role permissions for the leads collection.",
		Details:     details,
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewServerFaultError reports an HTTP 5xx from the backend. Never retried
// automatically.
func NewServerFaultError(status int, details string) *StandardError {
	return &StandardError{
		Code:        ErrCodeServerFault,
		UserMessage: "The server could not process your request right now. Please try again later.",
		Details:     fmt.Sprintf("status %d: %s", status, details),
		Retryable:   true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewNetworkUnreachableError reports a transport-level failure: the request
// never produced an HTTP response.
func NewNetworkUnreachableError(err error) *StandardError {
	return &StandardError{
		Code:        ErrCodeNetworkUnreachable,
		UserMessage: "Could not reach the server. Please check your connection and try again.",
		Details:     err.Error(),
		Retryable:   true,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSchemaViolationError reports an outgoing payload that carries keys the
// backend schema does not declare. This is caught before the request leaves.
func NewSchemaViolationError(details string) *StandardError {
	return &StandardError{
		Code:        ErrCodeSchemaViolation,
		UserMessage: "Please correct the highlighted fields and try again.",
		Details:     details,
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSubmissionInFlightError rejects a duplicate submit while one request is
// outstanding.
func NewSubmissionInFlightError() *StandardError {
	return &StandardError{
		Code:        ErrCodeSubmissionInFlight,
		UserMessage: "Your request is already being submitted.",
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewSessionNotFoundError reports an unknown or expired session id.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:        ErrCodeSessionNotFound,
		UserMessage: "Session expired. Please reload the page.",
		Details:     fmt.Sprintf("sessionId: %s", sessionID),
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}

// NewModalNotOpenError reports an operation that requires an open modal.
func NewModalNotOpenError(kind string) *StandardError {
	return &StandardError{
		Code:        ErrCodeModalNotOpen,
		UserMessage: "This action is no longer available.",
		Details:     fmt.Sprintf("modal: %s", kind),
		Retryable:   false,
		Timestamp:   time.Now().UTC(),
	}
}
