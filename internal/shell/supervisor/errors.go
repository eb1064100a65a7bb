package supervisor

import (
	"errors"
	"fmt"
)

// ErrExternal is wrapped into status messages when the core is managed
// outside the shell; it is never returned from Start or Stop.
var ErrExternal = errors.New("core is managed externally")

// SpawnError reports that the core executable could not be launched.
// It is surfaced to the caller and never retried automatically.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn core %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TerminationError reports that the OS refused to signal the core process.
// The handle stays in place so the stop can be retried.
type TerminationError struct {
	PID int
	Err error
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("failed to terminate core (pid %d): %v", e.PID, e.Err)
}

func (e *TerminationError) Unwrap() error { return e.Err }
