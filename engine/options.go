package engine

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/arborlogic/arbor/tree"
)

// effectiveOptions materializes a node's options for one tick. Concrete
// options pass through; Deferred options (per-tick calls and state
// lookups) are re-resolved against the current State, so dynamic options
// always reflect the latest context rather than a stale compile-time
// snapshot.
func effectiveOptions(s tree.State, n *tree.Node) (tree.Values, error) {
	if len(n.Options) == 0 {
		return nil, nil
	}
	vals := make(tree.Values, len(n.Options))
	for key, opt := range n.Options {
		switch o := opt.(type) {
		case tree.Concrete:
			vals[key] = o.Value
		case tree.Deferred:
			v, err := o.Resolve(s)
			if err != nil {
				return nil, fmt.Errorf("resolve option %q of node %d (%s): %w", key, n.ID, n.Tag, err)
			}
			vals[key] = v
		default:
			return nil, fmt.Errorf("option %q of node %d (%s): unknown option type %T", key, n.ID, n.Tag, opt)
		}
	}
	return vals, nil
}

// DecodeOptions decodes effective option values into a handler's typed
// options struct. Decoding is weakly typed so YAML-sourced scalars coerce
// into the field types handlers declare (e.g. "0.5" into a float64 field).
// Leaf authors use this the same way the built-ins do.
func DecodeOptions(vals tree.Values, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build option decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(vals)); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}
