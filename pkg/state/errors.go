package state

import "fmt"

// WriteError reports a failed state write (StateError in the spec's error
// taxonomy). In practice the only way a write can fail is if publishing the
// accompanying bus event fails, which only happens once the bus is shutting
// down.
type WriteError struct {
	Cell string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("state: write %s: %v", e.Cell, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
