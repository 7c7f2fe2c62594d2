package errors

import (
	"net/http"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer of the console.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeStateStore         ErrorCode = "COMMON_012"
)

// Gateway error codes cover the remote collections gateway: transport
// failures, non-2xx responses, and references to queue items the server no
// longer knows about.
const (
	ErrCodeGatewayUnavailable ErrorCode = "GW_001"
	ErrCodeGatewayResponse    ErrorCode = "GW_002"
	ErrCodeStaleReference     ErrorCode = "GW_003"
)

// Engine error codes cover the reconciliation engine itself.
const (
	ErrCodeEngineDisabled   ErrorCode = "ENG_001"
	ErrCodeActionInFlight   ErrorCode = "ENG_002"
	ErrCodeEmptyUpload      ErrorCode = "ENG_003"
	ErrCodeUnknownOperation ErrorCode = "ENG_004"
)

// Reminder error codes cover the escalation subsystem.
const (
	ErrCodeReminderNotDue    ErrorCode = "REM_001"
	ErrCodeReminderPaused    ErrorCode = "REM_002"
	ErrCodeInvoiceNotTracked ErrorCode = "REM_003"
)

// CodeOK is the sentinel returned by GetCode for a nil error.
const CodeOK = ErrorCode("OK")

// httpStatusByCode maps each error code onto the HTTP status used by the
// interfaces layer when rendering an AppError.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeStateStore:         http.StatusInternalServerError,

	ErrCodeGatewayUnavailable: http.StatusBadGateway,
	ErrCodeGatewayResponse:    http.StatusBadGateway,
	ErrCodeStaleReference:     http.StatusConflict,

	ErrCodeEngineDisabled:   http.StatusConflict,
	ErrCodeActionInFlight:   http.StatusConflict,
	ErrCodeEmptyUpload:      http.StatusBadRequest,
	ErrCodeUnknownOperation: http.StatusNotFound,

	ErrCodeReminderNotDue:    http.StatusConflict,
	ErrCodeReminderPaused:    http.StatusConflict,
	ErrCodeInvoiceNotTracked: http.StatusNotFound,
}

// HTTPStatus returns the HTTP status associated with the code, defaulting to
// 500 for unmapped codes so that new codes fail safe rather than leak 200s.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
