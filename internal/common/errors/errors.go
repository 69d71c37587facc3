// Package errors provides standardized error handling for the filter agent.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeNoReportState    ErrorCode = "NO_REPORT_STATE"
	ErrCodeGroupNotFound    ErrorCode = "GROUP_NOT_FOUND"
	ErrCodeInvalidCondition ErrorCode = "INVALID_CONDITION"
	ErrCodeUnknownOperator  ErrorCode = "UNKNOWN_OPERATOR"
	ErrCodeUnknownOperation ErrorCode = "UNKNOWN_OPERATION"

	ErrCodeIntentParsingFailed ErrorCode = "INTENT_PARSING_FAILED"
	ErrCodeIntentAPITimeout    ErrorCode = "INTENT_API_TIMEOUT"
	ErrCodeValueLookupFailed   ErrorCode = "VALUE_LOOKUP_FAILED"

	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeProcessingError  ErrorCode = "PROCESSING_ERROR"
	ErrCodeConversationSave ErrorCode = "CONVERSATION_SAVE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewNoReportStateError signals an operation invoked with no report loaded.
func NewNoReportStateError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoReportState,
		Message:   "No report structure loaded for this request",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGroupNotFoundError signals an explicit selection of a nonexistent column group.
func NewGroupNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGroupNotFound,
		Message:   "Column group not found",
		Details:   fmt.Sprintf("name: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidConditionError signals malformed condition data during ingestion.
// The offending condition is skipped; the request continues.
func NewInvalidConditionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCondition,
		Message:   "Malformed filter condition",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntentParsingFailedError creates a retryable intent resolution error.
func NewIntentParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentParsingFailed,
		Message:   "Intent resolution failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntentAPITimeoutError creates a retryable intent API timeout error.
func NewIntentAPITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentAPITimeout,
		Message:   "Intent API timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProcessingError wraps an unexpected internal failure. The wrapped
// detail stays server-side; callers see only the generic message.
func NewProcessingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProcessingError,
		Message:   "An error occurred while processing your request",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the ErrorCode from an error, defaulting to PROCESSING_ERROR.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*StandardError); ok {
		return se.Code
	}
	return ErrCodeProcessingError
}

// PublicMessage returns the caller-safe message for an error. Internal
// detail from non-standard errors is never leaked verbatim.
func PublicMessage(err error) string {
	if se, ok := err.(*StandardError); ok {
		return se.Message
	}
	return "An error occurred while processing your request"
}
