package tree

// NodeID is a process-wide-unique positive identifier assigned once at
// compile time. It is never reused, stays stable for the compiled tree's
// lifetime, and is the addressing key for persistent node memory.
type NodeID int64

// Node is one node of a compiled tree: validated, identity-assigned and
// option-resolved, ready for repeated evaluation. Compiled trees are
// immutable once produced; they may be shared across evaluations freely.
type Node struct {
	Tag      string
	ID       NodeID
	Options  Options
	Children []*Node
}

// Options maps option keys to their resolved form.
type Options map[string]Option

// Option is the resolved form of one configured option value: either a
// concrete value fixed at compile time, or a deferred binding re-resolved
// against the current State before every dispatch. The split is explicit
// (rather than hiding a callable behind a plain value) so serialization
// code can detect Deferred options and reject or encode them deliberately.
type Option interface {
	option()
}

// Concrete is an option value fixed at compile time. This includes values
// produced by immediate-call references, which are invoked once during
// compilation and are not re-derivable afterwards.
type Concrete struct {
	Value any
}

func (Concrete) option() {}

// DeferredKind identifies which binding produced a Deferred option.
type DeferredKind string

const (
	// DeferPerTick re-invokes a named function with fixed arguments on
	// every evaluation.
	DeferPerTick DeferredKind = "per-tick-call"

	// DeferLookup reads a fixed path out of the current State on every
	// evaluation.
	DeferLookup DeferredKind = "state-lookup"
)

// Deferred is an option bound to a resolver closure invoked against the
// current State before each dispatch of the owning node.
type Deferred struct {
	Kind    DeferredKind
	Resolve func(State) (any, error)
}

func (Deferred) option() {}

// Values holds the effective option values for one tick, after any
// Deferred options have been resolved against the current State.
type Values map[string]any
