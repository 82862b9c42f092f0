// Package domainerrors defines the error taxonomy shared by services and
// transport. Services attach a Code describing the business outcome; the HTTP
// layer maps codes to status codes without inspecting error strings.
//
// Import with an alias for readable call sites:
//
//	dErrors "trichluc/pkg/domain-errors"
//	return dErrors.New(dErrors.CodeConflict, "ward already registered")
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	// CodeInvalidInput marks caller errors: missing ward, sheet, or plot.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks malformed transport-level requests.
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	// CodeWardNotRegistered is raised in strict mode when the requested ward
	// is absent from the registry. Recoverable via the quick-add flow.
	CodeWardNotRegistered Code = "ward_not_registered"
	// CodeUnavailable covers persistence errors raised before a number was
	// committed. Nothing changed; the whole call may be retried.
	CodeUnavailable Code = "unavailable"
	// CodeIssuedUnrecorded covers failures after the counter committed: the
	// number is consumed but the caller must not blindly re-allocate.
	CodeIssuedUnrecorded Code = "issued_unrecorded"
	// CodeLinkageFailure is post-issuance and non-fatal: the number stands,
	// attaching it to the external record is independently retryable.
	CodeLinkageFailure Code = "linkage_failure"
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeInternal       Code = "internal"
)

// Error carries a Code alongside a human-readable message and an optional
// wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// HasCode is an alias of Is for call sites that read better with it.
func HasCode(err error, code Code) bool {
	return Is(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost message, or a generic one for unclassified
// errors so internals never leak to clients.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a Code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeWardNotRegistered:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeIssuedUnrecorded, CodeLinkageFailure:
		// The number was issued; 502 signals a degraded downstream rather
		// than a failed allocation.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
