// Package errors provides structured error types for funcplot.
//
// Every failure the engine can report carries a machine-readable [Code]:
//   - SYNTAX_ERROR: malformed expression text, captured at compile time
//   - UNDEFINED_SLOT: evaluating a slot that never compiled successfully
//   - DOMAIN_ERROR: a mathematically undefined operation (log of a non-positive
//     number, division by zero, ...)
//   - RUNTIME_ERROR: any other evaluation fault, such as overflow
//   - NON_CONVERGENCE: an iterative search exhausted its iteration budget
//   - INVALID_ARGUMENT: a contract violation by the caller
//
// The remaining codes serve the outer layers (plot files, HTTP API, CLI).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDomain, "log of non-positive value %g", v)
//	if errors.Is(err, errors.ErrCodeDomain) {
//	    // render "no curve here"
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode plot file %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Engine error taxonomy.
const (
	ErrCodeSyntax          Code = "SYNTAX_ERROR"
	ErrCodeUndefinedSlot   Code = "UNDEFINED_SLOT"
	ErrCodeDomain          Code = "DOMAIN_ERROR"
	ErrCodeRuntime         Code = "RUNTIME_ERROR"
	ErrCodeNonConvergence  Code = "NON_CONVERGENCE"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// Codes used by the pipeline, server and CLI.
const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeInternal        Code = "INTERNAL_ERROR"
)

// Error is a coded failure. Cause may be nil.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error whose cause is err.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the first *Error in err's chain carries code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage is the message without the code prefix, for CLI output and
// HTTP error bodies. Errors without a code are returned as err.Error().
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInvalid reports whether err is a caller mistake rather than a failure of
// the expression itself.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidArgument, ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeSyntax:
		return true
	}
	return false
}

// IsEvaluation reports whether err is an evaluation failure at a point, the
// kind that becomes a NaN sample when a whole range is evaluated.
func IsEvaluation(err error) bool {
	switch GetCode(err) {
	case ErrCodeDomain, ErrCodeRuntime:
		return true
	}
	return false
}
