package compiler

import (
	"sync/atomic"

	"github.com/arborlogic/arbor/tree"
)

// Sequence hands out node identities. It is an explicit counter object
// owned by (or injected into) a Compiler rather than hidden global state;
// compilers that must keep identities unique across each other share one
// Sequence by explicit construction.
//
// A single atomic counter is all the coordination compilation needs:
// concurrent compiles may interleave Next calls safely, and compiled trees
// are immutable once produced.
type Sequence struct {
	n atomic.Int64
}

// Next returns the next identity. Identities are positive, strictly
// increasing, and never reused.
func (s *Sequence) Next() tree.NodeID {
	return tree.NodeID(s.n.Add(1))
}

// Current returns the most recently issued identity, 0 before the first.
func (s *Sequence) Current() tree.NodeID {
	return tree.NodeID(s.n.Load())
}

// DefaultSequence is shared by every Compiler that is not given its own,
// keeping auto-assigned identities unique across the process lifetime.
var DefaultSequence = new(Sequence)
