package project

import "fmt"

// GroupError wraps a failure while emitting one file group, naming the
// root-relative path of the file the group would have produced. Context
// cancellation is never wrapped in a GroupError so callers can match it with
// errors.Is directly.
type GroupError struct {
	Label string
	Err   error
}

// Error implements error.
func (e *GroupError) Error() string {
	return fmt.Sprintf("project: emit %s: %v", e.Label, e.Err)
}

// Unwrap supports errors.Is and errors.As.
func (e *GroupError) Unwrap() error {
	return e.Err
}
