// Package errors provides structured error types for pageprint.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, HTTP API and library callers
//   - Machine-readable error codes for programmatic handling
//   - A single fatal job error carrying the failing phase and elapsed time
//
// Non-fatal problems (a node that could not be extracted, an asset that
// could not be resolved) are never returned as errors; they are collected
// in a [github.com/matzehuels/pageprint/pkg/diag.Report] instead.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND, ASSET_MISSING: Resource not found
//   - TIMEOUT, CANCELLED: Job-level fatal conditions
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid state name: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidURL    Code = "INVALID_URL"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeAssetMissing Code = "ASSET_MISSING"

	// Tree errors
	ErrCodeSchemaInvalid Code = "SCHEMA_INVALID"

	// Job-level fatal errors
	ErrCodeTimeout   Code = "TIMEOUT"
	ErrCodeCancelled Code = "CANCELLED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

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
// It unwraps the error chain looking for an *Error or *JobError with a
// matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var je *JobError
	if errors.As(err, &je) {
		return je.Code
	}
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
	var je *JobError
	if errors.As(err, &je) {
		return fmt.Sprintf("%s failed after %s: %s", je.Phase, je.Elapsed.Round(time.Millisecond), UserMessage(je.Cause))
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Phase names a stage of a capture/reconstruction job.
type Phase string

// Job phases, in execution order.
const (
	PhaseCapture     Phase = "capture"
	PhaseExtract     Phase = "extract"
	PhaseMerge       Phase = "merge"
	PhaseReconstruct Phase = "reconstruct"
)

// JobError is the single fatal error of a job. A job either succeeds
// (possibly with diagnostics) or fails with exactly one JobError; no
// partial tree accompanies it.
type JobError struct {
	Code    Code
	Phase   Phase
	Elapsed time.Duration
	Cause   error
}

// Error implements the error interface.
func (e *JobError) Error() string {
	msg := fmt.Sprintf("%s: %s phase failed after %s", e.Code, e.Phase, e.Elapsed.Round(time.Millisecond))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *JobError) Unwrap() error { return e.Cause }

// NewJobError builds a JobError for phase, measuring elapsed time from start.
// If cause already carries a code, that code is kept.
func NewJobError(phase Phase, start time.Time, cause error) *JobError {
	code := GetCode(cause)
	if code == "" {
		code = ErrCodeInternal
	}
	var je *JobError
	if errors.As(cause, &je) {
		cause = je.Cause
	}
	return &JobError{Code: code, Phase: phase, Elapsed: time.Since(start), Cause: cause}
}

// FromContext converts a context error into a job-level fatal error.
// DeadlineExceeded maps to TIMEOUT; anything else maps to CANCELLED.
func FromContext(phase Phase, start time.Time, ctxErr error) *JobError {
	code := ErrCodeCancelled
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		code = ErrCodeTimeout
	}
	return &JobError{Code: code, Phase: phase, Elapsed: time.Since(start), Cause: ctxErr}
}

// IsFatal reports whether err is a timeout or cancellation.
func IsFatal(err error) bool {
	code := GetCode(err)
	return code == ErrCodeTimeout || code == ErrCodeCancelled ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
