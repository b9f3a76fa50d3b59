package core

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	// ErrNotFound is returned by drivers when an entity does not exist on
	// the remote.
	ErrNotFound = errors.New("entity not found")

	// ErrFlushInProgress is returned when Flush is invoked while another
	// flush on the same session has not finished. Flush is single-flight
	// per session.
	ErrFlushInProgress = errors.New("flush already in progress")

	// ErrSessionClosed is returned when an operation is attempted on a
	// closed session.
	ErrSessionClosed = errors.New("session is closed")
)

// Op names the remote operation that was being performed when a commit
// failed.
type Op string

const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpContent Op = "content"
)

// ValidationError aggregates all problems found while validating a pending
// set before flush. It is raised before any network call; no state has
// been mutated when it is returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Problems, "; "))
}

// CommitError wraps a driver failure during flush. It identifies the
// entity and operation that failed. Entities committed before the failure
// keep their new state; entities not yet dispatched are untouched.
type CommitError struct {
	Kind Kind
	ID   string
	Op   Op
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s of %s %q failed: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// SchedulerError reports a stalled flush schedule: entities remain but
// none are ready. Graph validation should have rejected the cycle, so
// this indicates a defect in graph construction. Never retried.
type SchedulerError struct {
	Remaining int
}

func (e *SchedulerError) Error() string {
	return fmt.Sprintf("scheduler stalled with %d entities unprocessed despite acyclic graph", e.Remaining)
}
