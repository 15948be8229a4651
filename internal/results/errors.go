package results

import (
	"errors"
	"fmt"
)

// ErrNoTerminal is returned by TerminalPrompter when stdin is not an
// interactive terminal and no decision can be obtained.
var ErrNoTerminal = errors.New("stdin is not a terminal")

// CorruptRecordError is returned when a stored line fails to parse or
// fails structural validation. The store is never partially loaded: the
// operator must repair or remove the offending line.
type CorruptRecordError struct {
	Path string
	Line int
	Err  error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record in %s line %d: %v", e.Path, e.Line, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

// AtomicWriteError is returned when the durable rewrite of a store file
// could not complete. The pre-existing store file is left intact.
type AtomicWriteError struct {
	Path string
	Err  error
}

func (e *AtomicWriteError) Error() string {
	return fmt.Sprintf("atomic write of %s failed: %v", e.Path, e.Err)
}

func (e *AtomicWriteError) Unwrap() error { return e.Err }

// ConflictResolutionError is returned when a duplicate conflict needs a
// decision but none is available (no force flag, no interactive terminal).
// Nothing is written; the candidate record is lost unless re-submitted.
type ConflictResolutionError struct {
	Model  string
	Task   string
	Reason string
}

func (e *ConflictResolutionError) Error() string {
	return fmt.Sprintf("unresolved duplicate conflict for model %s task %s: %s", e.Model, e.Task, e.Reason)
}
