package engine

import "github.com/arborlogic/arbor/tree"

// TraceEvent records one node dispatch during a top-level evaluation.
// Events within a run share its token and carry strictly increasing seq
// numbers in dispatch-completion order.
type TraceEvent struct {
	RunToken string
	Seq      int64
	NodeID   tree.NodeID
	Tag      string
	Status   tree.Status

	// Err carries the message of a fatal dispatch failure, empty otherwise.
	Err string
}

// Tracer observes node dispatches. Implementations must be cheap; Tick is
// called synchronously on the evaluation path.
type Tracer interface {
	Tick(ev TraceEvent)
}
