// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package diag defines the errors the ESSL translator reports.
//
// Two kinds exist. An invariant violation means the IR broke a contract the
// front-end promised (an unknown node kind, a symbol with no name, both
// legacy fragment outputs used at once); translation aborts. An unimplemented
// error marks a request that is legal but that this output target does not
// support; it is reported as a failed translation, never as a crash.
package diag

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes translation errors.
type ErrorKind uint8

const (
	// ErrInvariantViolation indicates the IR broke a front-end contract.
	ErrInvariantViolation ErrorKind = iota

	// ErrUnimplemented indicates a benign request the ESSL target does not support.
	ErrUnimplemented
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvariantViolation:
		return "InvariantViolation"
	case ErrUnimplemented:
		return "Unimplemented"
	default:
		return "Unknown"
	}
}

// Error represents a translation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Pass names the translator stage that failed (names, precision, glsl, ...).
	Pass string

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pass != "" {
		return fmt.Sprintf("%s %s: %s", e.Pass, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates a new translation error.
func NewError(kind ErrorKind, pass, message string) *Error {
	return &Error{
		Kind:    kind,
		Pass:    pass,
		Message: message,
	}
}

// Invariantf creates an invariant violation for the given pass.
func Invariantf(pass, format string, args ...any) *Error {
	return NewError(ErrInvariantViolation, pass, fmt.Sprintf(format, args...))
}

// Unimplementedf creates an unimplemented error for the given pass.
func Unimplementedf(pass, format string, args ...any) *Error {
	return NewError(ErrUnimplemented, pass, fmt.Sprintf(format, args...))
}

// IsInvariantViolation reports whether any error in err's chain is an invariant violation.
func IsInvariantViolation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrInvariantViolation
}

// IsUnimplemented reports whether any error in err's chain is an unimplemented error.
func IsUnimplemented(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrUnimplemented
}
