// Package pathsafe turns untrusted identifier and resource names into
// filesystem-legal names and confines every produced path to a sandbox root,
// enforcing the platform's path-length limits along the way.
package pathsafe

import (
	"errors"
	"fmt"
)

// Sentinel errors for path validation failures. Use errors.Is to classify a
// returned *Error.
var (
	// ErrPathTooLong indicates the raw or canonical path exceeds the
	// platform-appropriate limit. Never retried.
	ErrPathTooLong = errors.New("pathsafe: path too long")

	// ErrPathEscapesRoot indicates the canonical path resolves outside the
	// sandbox root. Always fatal; treated as a security violation rather
	// than a user input mistake.
	ErrPathEscapesRoot = errors.New("pathsafe: path escapes target root")

	// ErrInvalidPath indicates the filesystem rejected the path for reasons
	// other than length.
	ErrInvalidPath = errors.New("pathsafe: invalid path")
)

// Error is a path validation error with context about the operation and the
// offending path.
type Error struct {
	// Op is the operation that failed (e.g. "validate").
	Op string

	// Path is the raw candidate path as supplied by the caller.
	Path string

	// Err is the underlying cause, wrapping one of the sentinel errors.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("pathsafe.%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given operation, path, and cause.
func NewError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}
