// Package domain holds the error vocabulary shared by the HTTP layer.
package domain

import (
	"errors"
	"fmt"
)

// Application error codes. Each maps to one HTTP status.
const (
	EINVALID      = "invalid"      // 400 - bad request body or arguments
	EUNAUTHORIZED = "unauthorized" // 401
	ENOTFOUND     = "not_found"    // 404
	ETOOLARGE     = "too_large"    // 413
	ERATELIMIT    = "rate_limit"   // 429 - local or upstream quota exhausted
	EINTERNAL     = "internal"     // 500 - details hidden from callers
	EUNAVAILABLE  = "unavailable"  // 502 - upstream failed or answered garbage
	ETIMEOUT      = "timeout"      // 504 - upstream did not answer in time
)

// Error is an application error with a code, a caller-safe message and
// the operation it came from.
type Error struct {
	Code string

	// Message is safe to show to API callers.
	Message string

	// Op names the operation, e.g. "address.validate". Logged, never returned.
	Op string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the first *Error in err's chain.
// Field validation failures report EINVALID; anything else is EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return EINVALID
	}
	return EINTERNAL
}

const internalMessage = "An internal error occurred. Please try again later."

// ErrorMessage returns a message safe to show to callers. Internal errors
// and unknown error types get a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return internalMessage
		}
		return e.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "Request validation failed"
	}
	return internalMessage
}

// ErrorOp returns the operation of the first *Error in err's chain.
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Errorf creates an error with a formatted message.
func Errorf(code, op, format string, args ...any) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError attaches a code and message to err. Returns nil if err is nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ValidationError collects per-field failures of a request body.
type ValidationError struct {
	// Fields maps JSON field names to messages.
	Fields map[string]string

	Op string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			if e.Op != "" {
				return fmt.Sprintf("%s: %s: %s", e.Op, field, msg)
			}
			return fmt.Sprintf("%s: %s", field, msg)
		}
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: validation failed for %d fields", e.Op, len(e.Fields))
	}
	return fmt.Sprintf("validation failed for %d fields", len(e.Fields))
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(op, field, message string) error {
	return &ValidationError{
		Op:     op,
		Fields: map[string]string{field: message},
	}
}

// AddFieldError adds a field failure to err when it is a ValidationError,
// otherwise it starts a new one.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if err != nil && errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return &ValidationError{
		Fields: map[string]string{field: message},
	}
}

// GetValidationFields returns the field failures of err, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// Internal wraps err. Callers only ever see a generic message.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}

// Unavailable reports an upstream failure.
func Unavailable(err error, op, message string) error {
	return &Error{Code: EUNAVAILABLE, Op: op, Message: message, Err: err}
}
