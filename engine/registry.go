package engine

import (
	"fmt"
	"strings"
)

// Registry maps a symbolic tag to its node type: tick handler, required
// options and children policy. It is the system's sole polymorphism
// mechanism — built-ins pre-populate it and caller extensions register
// through the identical interface, so the two are indistinguishable to the
// compiler and the engine.
//
// Registration must complete before any tree using a tag is compiled or
// evaluated. The Registry is not safe for concurrent mutation; register
// everything up front, then share it freely.
type Registry struct {
	specs map[string]NodeSpec
}

// NodeSpec describes one node type.
//
// The zero value of Children means "exactly zero children" and a nil
// Options slice means "no required options" — the defaults the compiler
// applies for leaf node types.
type NodeSpec struct {
	// Handler evaluates the node. Mandatory; there is no default.
	Handler Handler

	// Options lists option keys that must be present after resolution.
	Options []string

	// Children constrains the node's child count.
	Children ChildPolicy
}

// NewRegistry returns an empty registry, for callers who want full control
// over the vocabulary. Most callers start from Builtins.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]NodeSpec)}
}

// Register adds a node type under tag. Registering an empty tag, a nil
// handler, or a tag that is already present is an error; replacing a node
// type silently would make tree behavior depend on registration order.
func (r *Registry) Register(tag string, spec NodeSpec) error {
	if tag == "" {
		return fmt.Errorf("register node type: empty tag")
	}
	if spec.Handler == nil {
		return fmt.Errorf("register node type %q: nil handler", tag)
	}
	if _, exists := r.specs[tag]; exists {
		return fmt.Errorf("register node type %q: already registered", tag)
	}
	r.specs[tag] = spec
	return nil
}

// Spec returns the node type registered under tag.
func (r *Registry) Spec(tag string) (NodeSpec, bool) {
	spec, ok := r.specs[tag]
	return spec, ok
}

// Tags returns the registered tags, unordered. Used for diagnostics.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.specs))
	for tag := range r.specs {
		tags = append(tags, tag)
	}
	return tags
}

// ChildPolicy constrains a node type's child count. Supported policies:
// exact integer, set of allowed integers, "at least n", and "any including
// zero". The zero value is Exactly(0).
type ChildPolicy struct {
	kind childPolicyKind
	n    int
	set  []int
}

type childPolicyKind int

const (
	childExactly childPolicyKind = iota
	childAtLeast
	childOneOf
	childAny
)

// Exactly requires precisely n children.
func Exactly(n int) ChildPolicy {
	return ChildPolicy{kind: childExactly, n: n}
}

// AtLeast requires n or more children.
func AtLeast(n int) ChildPolicy {
	return ChildPolicy{kind: childAtLeast, n: n}
}

// OneOf allows any child count in the given set.
func OneOf(counts ...int) ChildPolicy {
	set := make([]int, len(counts))
	copy(set, counts)
	return ChildPolicy{kind: childOneOf, set: set}
}

// AnyChildren allows any child count, including zero.
func AnyChildren() ChildPolicy {
	return ChildPolicy{kind: childAny}
}

// Allows reports whether a child count satisfies the policy.
func (p ChildPolicy) Allows(count int) bool {
	switch p.kind {
	case childExactly:
		return count == p.n
	case childAtLeast:
		return count >= p.n
	case childOneOf:
		for _, n := range p.set {
			if count == n {
				return true
			}
		}
		return false
	case childAny:
		return true
	default:
		return false
	}
}

// String renders the policy for error messages.
func (p ChildPolicy) String() string {
	switch p.kind {
	case childExactly:
		return fmt.Sprintf("exactly %d", p.n)
	case childAtLeast:
		return fmt.Sprintf("at least %d", p.n)
	case childOneOf:
		parts := make([]string, len(p.set))
		for i, n := range p.set {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return "one of " + strings.Join(parts, " or ")
	case childAny:
		return "any"
	default:
		return fmt.Sprintf("policy(%d)", int(p.kind))
	}
}

// Builtins returns a registry pre-populated with the built-in control node
// vocabulary. Each call returns a fresh registry so callers can extend it
// without affecting others.
func Builtins() *Registry {
	r := NewRegistry()
	register := func(tag string, spec NodeSpec) {
		// Built-in specs are static; a failure here is a programming error.
		if err := r.Register(tag, spec); err != nil {
			panic(err)
		}
	}

	register("sequence", NodeSpec{Handler: tickSequence, Children: AtLeast(1)})
	register("selector", NodeSpec{Handler: tickSelector, Children: AtLeast(1)})
	register("selector-p", NodeSpec{Handler: tickSelectorP, Options: []string{"p"}, Children: AtLeast(1)})
	register("loop", NodeSpec{Handler: tickLoop, Options: []string{"count"}, Children: Exactly(1)})
	register("loop-until-success", NodeSpec{Handler: tickLoopUntilSuccess, Options: []string{"count"}, Children: Exactly(1)})
	register("parallel", NodeSpec{Handler: tickParallel, Options: []string{"mode", "howMany"}, Children: AtLeast(1)})
	register("randomly", NodeSpec{Handler: tickRandomly, Options: []string{"p"}, Children: OneOf(1, 2)})
	register("choose", NodeSpec{Handler: tickChoose, Children: AtLeast(1)})
	register("choose-each", NodeSpec{Handler: tickChooseEach, Options: []string{"repeat"}, Children: AtLeast(1)})
	register("always", NodeSpec{Handler: tickAlways, Children: Exactly(1)})
	register("never", NodeSpec{Handler: tickNever, Children: Exactly(1)})
	register("invert", NodeSpec{Handler: tickInvert, Children: Exactly(1)})
	register("success", NodeSpec{Handler: tickSuccess})
	register("failure", NodeSpec{Handler: tickFailure})

	return r
}
