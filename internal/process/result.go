// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package process

import (
	"errors"
	"fmt"
)

// ErrSubprocess matches every error produced by a child that did not succeed.
var ErrSubprocess = errors.New("subprocess failed")

// Status is the outcome of a child process.
type Status int

const (
	// StatusUnknown means the child has not finished.
	StatusUnknown Status = iota
	// StatusSuccess means the child exited with code 0 and nothing went wrong around it.
	StatusSuccess
	// StatusError means the child could not start, exited non-zero, or was signalled.
	StatusError
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is what Run reports about a child process.
type Result struct {
	Label          string // Label of the command
	ExitCode       int    // Exit code, -1 when the child never started or was killed
	Status         Status // Overall outcome
	Error          error  // Start, wait, signal or stream errors; nil on a clean non-zero exit
	LastStdErrLine string // Last non-blank line the child wrote to stderr
}

// Success reports whether the child ran to completion with exit code 0.
func (r *Result) Success() bool {
	return r != nil && r.Status == StatusSuccess
}

// Err returns nil for a successful result and an *ExitError otherwise.
func (r *Result) Err() error {
	if r.Success() {
		return nil
	}

	if r == nil {
		return &ExitError{Code: -1, Err: errors.New("no result")}
	}

	return &ExitError{
		Label:    r.Label,
		Code:     r.ExitCode,
		LastLine: r.LastStdErrLine,
		Err:      r.Error,
	}
}

// ExitError describes a child process that did not succeed.
// errors.Is(err, ErrSubprocess) is true for every ExitError.
type ExitError struct {
	Label    string
	Code     int
	LastLine string
	Err      error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: %q exited with code %d", ErrSubprocess, e.Label, e.Code)

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}

	if e.LastLine != "" {
		msg = fmt.Sprintf("%s (last stderr line: %s)", msg, e.LastLine)
	}

	return msg
}

// Is makes errors.Is(err, ErrSubprocess) true.
func (e *ExitError) Is(target error) bool {
	return target == ErrSubprocess //nolint:errorlint
}

// Unwrap returns the underlying start, wait or signal error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the child's exit code, or 1 when the child never produced one.
// It is suitable for passing to os.Exit.
func (e *ExitError) ExitCode() int {
	if e.Code <= 0 {
		return 1
	}

	return e.Code
}
