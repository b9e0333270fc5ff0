// Package domainerrors carries typed, recoverable error conditions from
// services to the transport layer. Handlers translate codes into HTTP
// statuses; nothing in here should ever crash the process.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the kind of failure. The string value is what clients see
// in the response envelope's error field.
type Code string

const (
	// CodeValidation covers malformed, missing, or conflicting input,
	// including uniqueness violations surfaced at registration.
	CodeValidation Code = "validation_error"
	// CodeBadRequest covers unparseable request bodies.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound means a referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeInvalidCode means the one-time code is missing, mismatched, or
	// expired.
	CodeInvalidCode Code = "invalid_code"
	// CodeAlreadyVerified means a code operation was attempted on an
	// account that already completed verification.
	CodeAlreadyVerified Code = "already_verified"
	// CodeUnauthorized means credentials or token are missing or invalid.
	CodeUnauthorized Code = "authentication_error"
	// CodeForbidden means the caller lacks the required role or ownership.
	CodeForbidden Code = "permission_error"
	// CodeInternal is an infrastructure failure. Its message is logged but
	// never shown to clients verbatim.
	CodeInternal Code = "internal_error"
)

// Error is the concrete domain error. Wrapped causes stay reachable through
// errors.Unwrap for logging.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error
// carrying the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode, kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// anything that is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the human-readable message from err. Internal errors
// collapse to a generic message so infrastructure details never leak.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != CodeInternal {
		return de.Message
	}
	return "something went wrong"
}

// ToHTTPStatus maps a code to the HTTP status the envelope carries.
// The mapping enforces the 2xx success / 4xx-5xx failure contract.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest, CodeInvalidCode, CodeAlreadyVerified:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
