// Package errors provides structured error types for tablespan.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the offending label or position
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three groups:
//   - Table errors (INVALID_SPAN, DUPLICATE_ANCHOR, MALFORMED_INPUT,
//     MISSING_CONTENT, TABLE_TOO_LARGE) describe a problem with the table
//     description itself
//   - INVALID_*: option validation failures
//   - FILE_NOT_FOUND / INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateAnchor, "label %q anchored twice", label)
//	if errors.Is(err, errors.ErrCodeDuplicateAnchor) {
//	    // Handle duplicate
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedInput, origErr, "decode span map")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Table errors
	ErrCodeInvalidSpan     Code = "INVALID_SPAN"
	ErrCodeDuplicateAnchor Code = "DUPLICATE_ANCHOR"
	ErrCodeMalformedInput  Code = "MALFORMED_INPUT"
	ErrCodeMissingContent  Code = "MISSING_CONTENT"
	ErrCodeTableTooLarge   Code = "TABLE_TOO_LARGE"

	// Option validation errors
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidBorder Code = "INVALID_BORDER"
	ErrCodeInvalidAlign  Code = "INVALID_ALIGN"
	ErrCodeInvalidOption Code = "INVALID_OPTION"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInputError reports whether err describes a problem with the caller's
// table description rather than with the environment.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidSpan, ErrCodeDuplicateAnchor, ErrCodeMalformedInput, ErrCodeMissingContent,
		ErrCodeTableTooLarge, ErrCodeInvalidFormat, ErrCodeInvalidBorder, ErrCodeInvalidAlign, ErrCodeInvalidOption:
		return true
	}
	return false
}
