package status

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced enrollment or lesson-progress row
// does not exist. It is surfaced to the caller and never retried here.
var ErrNotFound = errors.New("record not found")

// InvalidTransitionError is returned when a requested status change is not
// in the allowed-transition table for the current state. It carries both
// states so callers can explain the rejection.
type InvalidTransitionError struct {
	Entity    string // "enrollment" or "lesson progress"
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition from %s to %s", e.Entity, e.Current, e.Requested)
}

// InvalidArgumentError is returned for malformed inputs to RecordProgress.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DependencyError wraps a failure of the persistence layer. It is
// propagated as-is; retry policy belongs to the storage collaborator.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func dependency(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}
