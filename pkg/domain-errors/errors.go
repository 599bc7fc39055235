// Package domainerrors provides coded domain errors shared by all bounded
// contexts. It is conventionally imported as dErrors.
//
// Services return these so transport layers can translate consistently to
// HTTP responses, and tests can assert on codes instead of message text.
// Infrastructure facts (record missing, conflict) originate as sentinel
// errors in pkg/platform/sentinel and are wrapped with a code at the service
// boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and assertions.
type Code string

const (
	// CodeInvalidInput marks malformed values rejected at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks structurally valid but unprocessable requests.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a missing candidate, evaluator, round, or assignment.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks requests without an authenticated actor.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks role mismatches; no state is changed.
	CodeForbidden Code = "forbidden"
	// CodeConflict marks writes rejected by a uniqueness or state constraint.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks constructor/domain invariant failures.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks unexpected failures; details are never surfaced.
	CodeInternal Code = "internal_error"
	// CodeUnavailable marks a dependency that is temporarily unreachable.
	CodeUnavailable Code = "unavailable"
)

// Error is a coded domain error, optionally wrapping a cause.
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

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	for errors.As(err, &domainErr) {
		if domainErr.Code == code {
			return true
		}
		err = domainErr.Err
		domainErr = nil
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost coded message, or empty when the error
// carries none.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}
