// Package domainerrors carries classified errors across service boundaries.
//
// Services return *Error values whose Code tells the caller what kind of
// failure occurred. Stores never return these directly; they return
// pkg/platform/sentinel errors which services translate.
//
// Import as:
//
//	dErrors "protekt/pkg/domain-errors"
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeNotFound marks a referenced product, policy, customer, loan or member that does not exist.
	CodeNotFound Code = "not_found"
	// CodeValidation marks malformed caller input.
	CodeValidation Code = "validation_error"
	// CodeConflict marks a request that collides with current state.
	CodeConflict Code = "conflict"
	// CodeCalculation marks unparseable monetary or rate input during premium computation.
	CodeCalculation Code = "calculation_error"
	// CodeUnavailable marks a collaborator (database, object storage, loan system) that could not serve the request.
	CodeUnavailable Code = "unavailable"
	// CodeInvariantViolation is raised by model constructors; services map it to CodeValidation or CodeConflict.
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Error is a classified domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code. A nil err still produces an error so callers
// never lose the classification.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost *Error in the chain, or CodeInternal
// when the chain carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost *Error in err's chain has the given code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode that reads better in conditionals.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// Classify leaves err untouched when it already carries a Code and wraps it
// under code otherwise.
func Classify(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return Wrap(err, code, msg)
}
