package compiler

import (
	"fmt"

	"github.com/arborlogic/arbor/tree"
)

// Func is a caller-supplied function referenced from tree configs. It
// receives the literal's trailing arguments and returns an option value.
type Func func(args ...any) (any, error)

// FuncTable maps symbolic function ids to callables. It is supplied once
// to Compile; per-tick-call closures capture their function at compile
// time.
type FuncTable map[string]Func

// Reserved markers identifying a deferred reference: a config value that
// is an ordered sequence of two or more elements whose first element is
// one of these strings.
const (
	// MarkerImmediateCall invokes the named function at compile time and
	// replaces the option with its concrete return value. The call is not
	// re-derivable after compilation — dynamism traded for
	// serializability.
	MarkerImmediateCall = "immediate-call"

	// MarkerPerTickCall binds the option to a closure re-invoking the
	// named function with fixed arguments on every evaluation.
	MarkerPerTickCall = "per-tick-call"

	// MarkerStateLookup binds the option to a closure reading a fixed
	// path out of the current State on every evaluation.
	MarkerStateLookup = "state-lookup"
)

// resolveOptions classifies and resolves every config value for the node
// at path. Plain values become Concrete options; deferred references
// become Concrete (immediate call) or Deferred (per-tick call, state
// lookup) per their marker.
func (c *Compiler) resolveOptions(cfg map[string]any, path string) (tree.Options, error) {
	if len(cfg) == 0 {
		return nil, nil
	}
	opts := make(tree.Options, len(cfg))
	for key, raw := range cfg {
		opt, err := c.resolveValue(raw, key, path)
		if err != nil {
			return nil, err
		}
		opts[key] = opt
	}
	return opts, nil
}

// resolveValue resolves one config value.
func (c *Compiler) resolveValue(raw any, key, path string) (tree.Option, error) {
	marker, rest, ok := classifyDeferred(raw)
	if !ok {
		return tree.Concrete{Value: raw}, nil
	}

	switch marker {
	case MarkerStateLookup:
		lookupPath := make([]string, len(rest))
		for i, elem := range rest {
			seg, isString := elem.(string)
			if !isString {
				return nil, errf(ErrMalformedDeferred, path,
					"option %q: state-lookup path element %d is %T, want string", key, i, elem)
			}
			lookupPath[i] = seg
		}
		return tree.Deferred{
			Kind: tree.DeferLookup,
			Resolve: func(s tree.State) (any, error) {
				v, _ := s.Lookup(lookupPath...)
				return v, nil
			},
		}, nil

	case MarkerImmediateCall, MarkerPerTickCall:
		fnID, isString := rest[0].(string)
		if !isString {
			return nil, errf(ErrMalformedDeferred, path,
				"option %q: %s function id is %T, want string", key, marker, rest[0])
		}
		fn, known := c.funcs[fnID]
		if !known {
			return nil, errf(ErrUnknownFunction, path,
				"option %q: function %q is not in the function table", key, fnID)
		}
		args := rest[1:]

		if marker == MarkerImmediateCall {
			v, err := fn(args...)
			if err != nil {
				return nil, errf(ErrFunctionFailed, path,
					"option %q: immediate call of %q failed: %v", key, fnID, err)
			}
			return tree.Concrete{Value: v}, nil
		}
		return tree.Deferred{
			Kind: tree.DeferPerTick,
			Resolve: func(tree.State) (any, error) {
				v, err := fn(args...)
				if err != nil {
					return nil, fmt.Errorf("per-tick call of %q: %w", fnID, err)
				}
				return v, nil
			},
		}, nil

	default:
		// classifyDeferred only reports reserved markers.
		return nil, errf(ErrMalformedDeferred, path, "option %q: unknown marker %q", key, marker)
	}
}

// classifyDeferred reports whether a config value is a deferred reference:
// an ordered sequence of two or more elements led by a reserved marker.
// Anything else — including a one-element sequence or a sequence led by a
// non-marker — is a plain literal value.
func classifyDeferred(raw any) (marker string, rest []any, ok bool) {
	seq, isSeq := raw.([]any)
	if !isSeq || len(seq) < 2 {
		return "", nil, false
	}
	head, isString := seq[0].(string)
	if !isString {
		return "", nil, false
	}
	switch head {
	case MarkerImmediateCall, MarkerPerTickCall, MarkerStateLookup:
		return head, seq[1:], true
	default:
		return "", nil, false
	}
}
