package core

import (
	"errors"
	"fmt"
)

var (
	// ErrClassificationAmbiguous indicates the classifier output could not be
	// mapped to a canonical category. The dispatcher recovers by substituting
	// the configured default category; it is never surfaced to the caller.
	ErrClassificationAmbiguous = errors.New("classification ambiguous")

	// ErrUnresolvedStageName indicates a free-text stage name matched neither
	// a canonical identifier, the alias table, nor the fuzzy heuristic. The
	// dispatcher recovers with the category default and records a diagnostic.
	ErrUnresolvedStageName = errors.New("unresolved stage name")

	// ErrEmptyQuery is the single fatal entry-boundary condition: a blank
	// query fails fast before any run state is constructed.
	ErrEmptyQuery = errors.New("query must not be empty")
)

// ExternalCallError wraps a failed call to an external collaborator (model
// endpoint, literature source). The dispatcher retries these with backoff and
// skips the stage once retries are exhausted.
type ExternalCallError struct {
	Stage StageID
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("external call failed in %s (%s): %v", e.Stage, e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *ExternalCallError) Unwrap() error { return e.Err }

// NewExternalCallError wraps err with stage and operation context.
func NewExternalCallError(stage StageID, op string, err error) *ExternalCallError {
	return &ExternalCallError{Stage: stage, Op: op, Err: err}
}

// MemoryIOError wraps an unrecoverable storage failure in a MemoryStore
// implementation. A missing backing file is not an error; stores treat
// absence as an empty store.
type MemoryIOError struct {
	Op  string // "append" or "retrieve"
	Err error
}

// Error implements the error interface.
func (e *MemoryIOError) Error() string {
	return fmt.Sprintf("memory %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *MemoryIOError) Unwrap() error { return e.Err }

// NewMemoryIOError wraps err with the failed store operation.
func NewMemoryIOError(op string, err error) *MemoryIOError {
	return &MemoryIOError{Op: op, Err: err}
}
