// Package domainerrors defines the coded error type services return across
// package boundaries. Stores return sentinel errors (pkg/platform/sentinel);
// services translate those into coded domain errors; transport maps codes to
// HTTP statuses. No error is ever swallowed along the way: a failing operation
// always surfaces its specific code and message.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error for callers and for transport mapping.
type Code string

const (
	// CodeInvalidInput marks malformed input (bad identifier format, missing
	// fields). Always recoverable; surfaced to the caller immediately.
	CodeInvalidInput Code = "invalid_input"
	// CodeEligibility marks a denied vote-eligibility check. The message
	// carries the specific reason verbatim; never retried automatically.
	CodeEligibility Code = "eligibility_denied"
	// CodeCeremony marks a device/sensor/permission failure in a verification
	// factor. The caller may retry or skip the factor.
	CodeCeremony Code = "ceremony_failed"
	// CodeRateLimited marks throttled operations (vote caps, login lockouts).
	// Recoverable only after the window elapses.
	CodeRateLimited Code = "rate_limited"
	// CodeInvalidState marks protocol misuse such as operating on an unknown
	// or already-terminal verification session. Fatal to the operation.
	CodeInvalidState Code = "invalid_state"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeInternal     Code = "internal"
)

// Error is the coded domain error. It wraps an optional cause so errors.Is
// still reaches sentinel errors underneath.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeEligibility:
		return http.StatusForbidden
	case CodeCeremony:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeInvalidState, CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
