// Package errors provides the unified error type and factory functions for the
// collections operations console.  Every layer (domain, engine, gateway,
// interfaces) uses AppError as the single carrier for structured error
// information, enabling consistent HTTP responses, logging, and metrics.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the single structured error type used throughout the console.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeGatewayResponse, "confirm rejected by gateway")
//	return errors.Wrap(err, errors.ErrCodeStateStore, "failed to persist mode")
//	return errors.NotFound("operation 42 not in pending queue").WithDetail("id=42")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error, suitable
	// for inclusion in API responses returned to operators.
	Message string

	// Detail carries supplementary context (operation ids, row indexes, keys)
	// that aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>" with the detail segment omitted when
// Detail is empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain without additional boilerplate at call sites.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set to the
// supplied string.  It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
// It is the preferred factory for errors that originate in the current layer
// without an underlying cause from a lower layer.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap constructs an AppError that wraps an existing error.  If err is nil,
// Wrap returns nil so it can be used inline:
//
//	return errors.Wrap(store.Set(ctx, key, val), errors.ErrCodeStateStore, "persist failed")
//
// When err is already an *AppError and code is ErrCodeInternal the original
// code is preserved, preventing loss of the original classification during
// cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == ErrCodeInternal {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.  It is the idiomatic way to check specific failure modes:
//
//	if errors.IsCode(err, errors.ErrCodeStaleReference) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether any error in err's chain carries ErrCodeNotFound,
// ErrCodeUnknownOperation, or ErrCodeInvoiceNotTracked.
func IsNotFound(err error) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) {
			switch ae.Code {
			case ErrCodeNotFound, ErrCodeUnknownOperation, ErrCodeInvoiceNotTracked:
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain.  If no *AppError is present, ErrCodeInternal is returned; for a nil
// error the CodeOK sentinel is returned.  This gives middleware and metrics a
// single code to emit as a label without coupling to specific failure sites.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeInternal
}

// Convenience factories for the most common error conditions.  Each mirrors
// the naming of well-known Go HTTP frameworks so call sites read naturally.

// NotFound constructs an ErrCodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// InvalidParam constructs an ErrCodeBadRequest AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: ErrCodeBadRequest, Message: message}
}

// Conflict constructs an ErrCodeConflict AppError.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Unavailable constructs an ErrCodeServiceUnavailable AppError.
func Unavailable(message string) *AppError {
	return &AppError{Code: ErrCodeServiceUnavailable, Message: message}
}

// Internal constructs an ErrCodeInternal AppError.  Use this for unexpected
// failures where no more specific code applies.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}
