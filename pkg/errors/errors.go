// Package errors provides structured error types for vfxgraph.
//
// This package defines error codes and types that enable:
//   - Telling "fine, empty" apart from "corrupt input" and from "bug"
//   - Machine-readable error codes for the CLI and the HTTP API
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Document codes describe what went wrong while encoding or decoding a
// graph document. Some of them abort the whole operation:
//
//   - MALFORMED_DOCUMENT: unparsable structure or attribute
//   - UNKNOWN_DESCRIPTOR: a descriptor key the catalog does not know
//   - DANGLING_SOURCE: the owner of a cross-reference section is missing
//
// Others are recoverable and reported alongside a successful decode:
//
//   - SCHEMA_MISMATCH: a block's port layout changed since it was saved
//   - DANGLING_REFERENCE: a single cross-reference target is missing
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedDocument, "bad attribute %q", name)
//	if errors.Is(err, errors.ErrCodeMalformedDocument) {
//	    // Handle corrupt input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "encode %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document errors
	ErrCodeMalformedDocument  Code = "MALFORMED_DOCUMENT"
	ErrCodeUnknownDescriptor  Code = "UNKNOWN_DESCRIPTOR"
	ErrCodeSchemaMismatch     Code = "SCHEMA_MISMATCH"
	ErrCodeDanglingReference  Code = "DANGLING_REFERENCE"
	ErrCodeDanglingSource     Code = "DANGLING_SOURCE"
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"

	// Identity errors
	ErrCodeUnknownID   Code = "UNKNOWN_ID"
	ErrCodeDuplicateID Code = "DUPLICATE_ID"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidName  Code = "INVALID_NAME"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeStorage  Code = "STORAGE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
// The outermost *Error wins, so a wrapped inner code is not reported.
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

// Aborts reports whether an error with the given code invalidates a whole
// document, as opposed to a single node or edge.
func Aborts(code Code) bool {
	switch code {
	case ErrCodeSchemaMismatch, ErrCodeDanglingReference:
		return false
	}
	return true
}
