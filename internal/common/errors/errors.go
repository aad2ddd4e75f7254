// Package errors provides the standardized failure taxonomy for recommendation queries.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// ErrCodeValidation: client-detected input problem, never sent to the server.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeAuth: missing or expired credential, or a 401 from the service.
	ErrCodeAuth ErrorCode = "AUTH_ERROR"
	// ErrCodeRequest: transport failure or a 4xx carrying a message.
	ErrCodeRequest ErrorCode = "REQUEST_ERROR"
	// ErrCodeUnknown: 5xx, malformed payloads and anything else.
	ErrCodeUnknown ErrorCode = "UNKNOWN_ERROR"
)

// Fallback messages shown when the service gives us nothing better.
const (
	DefaultRequestMessage = "Failed to fetch recommendations"
	DefaultUnknownMessage = "Something went wrong while contacting the recommendation service"
	DefaultAuthMessage    = "Please log in again to continue"
)

// ErrSubmissionInFlight is returned when a form already has a pending request.
var ErrSubmissionInFlight = stderrors.New("SUBMISSION_IN_FLIGHT")

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// StandardError represents a structured application error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	StatusCode int                    `json:"statusCode,omitempty"`
	Fields     []FieldError           `json:"fields,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`

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

// WithMetadata attaches a key/value pair and returns the same error.
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

// NewValidationError builds a VALIDATION_ERROR from per-field problems.
func NewValidationError(fields []FieldError) *StandardError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Input validation failed",
		Details:   strings.Join(parts, "; "),
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingCredentialError is raised before any network I/O happens.
func NewMissingCredentialError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAuth,
		Message:   DefaultAuthMessage,
		Details:   "no session credential available",
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthError wraps a 401 answer from the service.
func NewAuthError(statusCode int, details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeAuth,
		Message:    DefaultAuthMessage,
		Details:    details,
		StatusCode: statusCode,
		Timestamp:  time.Now().UTC(),
	}
}

// NewRequestError wraps a 4xx answer. message may be empty.
func NewRequestError(statusCode int, message string) *StandardError {
	if strings.TrimSpace(message) == "" {
		message = DefaultRequestMessage
	}
	return &StandardError{
		Code:       ErrCodeRequest,
		Message:    message,
		StatusCode: statusCode,
		Timestamp:  time.Now().UTC(),
	}
}

// NewTransportError wraps a failure to reach the service at all.
func NewTransportError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequest,
		Message:   DefaultRequestMessage,
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewServerError wraps a 5xx answer.
func NewServerError(statusCode int, details string) *StandardError {
	return &StandardError{
		Code:       ErrCodeUnknown,
		Message:    DefaultUnknownMessage,
		Details:    details,
		StatusCode: statusCode,
		Timestamp:  time.Now().UTC(),
	}
}

// NewMalformedResponseError is used when a payload fails its schema.
func NewMalformedResponseError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknown,
		Message:   DefaultUnknownMessage,
		Details:   fmt.Sprintf("malformed %s response: %v", operation, err),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUnknownError wraps anything that fits no other category.
func NewUnknownError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknown,
		Message:   DefaultUnknownMessage,
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
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
	return NewUnknownError(err)
}

// CodeOf returns the code of err, UNKNOWN_ERROR for foreign errors and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }
func IsAuth(err error) bool       { return CodeOf(err) == ErrCodeAuth }
func IsRequest(err error) bool    { return CodeOf(err) == ErrCodeRequest }
func IsUnknown(err error) bool    { return CodeOf(err) == ErrCodeUnknown }

// FlattenMessage turns a service `error` value into display text. The service
// sends either a plain string or a serializer map of field -> messages.
func FlattenMessage(v interface{}) string {
	switch m := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(m)
	case []interface{}:
		parts := make([]string, 0, len(m))
		for _, item := range m {
			if s := FlattenMessage(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			s := FlattenMessage(m[k])
			switch {
			case s == "":
			case k == "non_field_errors" || k == "detail":
				parts = append(parts, s)
			default:
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(m)
	}
}
