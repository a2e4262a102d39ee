package roster

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a mutation targets an id that is not in
// the roster. No remote call is made in that case.
var ErrNotFound = errors.New("task not in roster")

// LoadError reports that the initial (or a reloaded) roster fetch failed.
// The roster is left as it was before the fetch.
type LoadError struct {
	Day string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading tasks for %s: %v", e.Day, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MutationError reports a failed single-task operation.
type MutationError struct {
	ID  string
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s task %s: %v", e.Op, e.ID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// MalformedEventError reports a feed event that could not be interpreted.
// The event is dropped.
type MalformedEventError struct {
	Seq    int64
	Kind   string
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed %q event (seq %d): %s", e.Kind, e.Seq, e.Reason)
}

// BulkError aggregates the failures of a bulk operation.
type BulkError struct {
	Succeeded int
	Failures  []BulkFailure
}

func (e *BulkError) Error() string {
	msg := fmt.Sprintf("%d succeeded, %d failed", e.Succeeded, len(e.Failures))
	if len(e.Failures) > 0 {
		msg += ": " + e.Failures[0].Err.Error()
		if len(e.Failures) > 1 {
			msg += fmt.Sprintf(" (and %d more)", len(e.Failures)-1)
		}
	}
	return msg
}

// IsLoadError reports whether err (or any error in its chain) is a LoadError.
func IsLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

// IsMutationError reports whether err (or any error in its chain) is a MutationError.
func IsMutationError(err error) bool {
	var mutErr *MutationError
	return errors.As(err, &mutErr)
}

// IsMalformedEvent reports whether err (or any error in its chain) is a
// MalformedEventError.
func IsMalformedEvent(err error) bool {
	var malErr *MalformedEventError
	return errors.As(err, &malErr)
}

// IsBulkError reports whether err (or any error in its chain) is a BulkError.
func IsBulkError(err error) bool {
	var bulkErr *BulkError
	return errors.As(err, &bulkErr)
}
