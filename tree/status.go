package tree

import "fmt"

// Status is the outcome of ticking a node.
//
// SUCCESS and FAILURE are the ordinary domain outcomes. RUNNING marks an
// in-progress evaluation; the engine propagates it but does not implement
// mid-tree resumption (RUNNING is reserved as a future extension point).
// ERROR is reserved for conditions severe enough that continuation is
// meaningless; no built-in control node ever produces it, leaves may.
type Status int

const (
	Success Status = iota
	Failure
	Running
	Error
)

// statusNames maps Status values to their wire/display names.
var statusNames = [...]string{
	Success: "SUCCESS",
	Failure: "FAILURE",
	Running: "RUNNING",
	Error:   "ERROR",
}

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus converts a canonical status name back to a Status.
// Used when reading persisted trace events.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return Error, fmt.Errorf("unknown status %q", name)
}

// Succeeded reports whether the status counts as a success for control-flow
// purposes. RUNNING counts: an in-progress child does not interrupt a
// selector scan and does not abort a sequence as a failure would.
func (s Status) Succeeded() bool {
	return s == Success || s == Running
}

// Failed is the negation of Succeeded.
func (s Status) Failed() bool {
	return !s.Succeeded()
}

// InProgress reports whether the status is RUNNING.
func (s Status) InProgress() bool {
	return s == Running
}

// TickResult pairs the status of one tick with the state it produced.
// The state a parent observes after ticking a child is exactly the state
// the child returned.
type TickResult struct {
	Status Status
	State  State
}
