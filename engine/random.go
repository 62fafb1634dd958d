package engine

import (
	"context"
	"fmt"

	"github.com/arborlogic/arbor/tree"
)

// tickRandomly gates evaluation on a uniform sample. With one child: tick
// it and return its result when the sample lands under p, otherwise
// FAILURE without ticking. With two children: the sample picks which child
// to tick (first under p, second otherwise) and that result is returned
// unchanged.
func tickRandomly(ctx context.Context, r *Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o probabilityOptions
	if err := DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("randomly node %d: %w", n.ID, err)
	}

	under := r.Rand().Float64() < o.P
	if len(n.Children) == 1 {
		if !under {
			return tree.TickResult{Status: tree.Failure, State: s}, nil
		}
		return r.Tick(ctx, s, n.Children[0])
	}

	if under {
		return r.Tick(ctx, s, n.Children[0])
	}
	return r.Tick(ctx, s, n.Children[1])
}

// tickChoose selects one child uniformly at random, ticks it, and returns
// its result unchanged.
func tickChoose(ctx context.Context, r *Run, s tree.State, n *tree.Node, _ tree.Values) (tree.TickResult, error) {
	child := n.Children[r.Rand().IntN(len(n.Children))]
	return r.Tick(ctx, s, child)
}

type repeatOptions struct {
	Repeat bool `mapstructure:"repeat"`
}

// poolKey addresses the depleting selection pool in a choose-each node's
// memory: the child indexes not yet selected this cycle.
const poolKey = "pool"

// tickChooseEach is stateful rotation via node memory. Each evaluation
// removes one child at random from a depleting pool of unselected
// children, ticks it, and returns its result. On pool exhaustion the pool
// refills and re-randomizes when repeat is set; otherwise further calls
// return FAILURE without ticking any child.
func tickChooseEach(ctx context.Context, r *Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o repeatOptions
	if err := DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("choose-each node %d: %w", n.ID, err)
	}

	mem := s.NodeMemory(n.ID)
	pool, initialized := poolFromMemory(mem, len(n.Children))
	if !initialized {
		pool = fullPool(len(n.Children))
	}
	if len(pool) == 0 {
		if !o.Repeat {
			return tree.TickResult{Status: tree.Failure, State: s}, nil
		}
		pool = fullPool(len(n.Children))
	}

	i := r.Rand().IntN(len(pool))
	childIdx := pool[i]
	remaining := make([]int, 0, len(pool)-1)
	remaining = append(remaining, pool[:i]...)
	remaining = append(remaining, pool[i+1:]...)

	s = s.WithNodeMemory(n.ID, map[string]any{poolKey: remaining})
	return r.Tick(ctx, s, n.Children[childIdx])
}

// fullPool returns the index pool covering every child.
func fullPool(n int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	return pool
}

// poolFromMemory reads the selection pool back out of node memory. State
// that round-tripped through JSON persistence carries the pool as []any
// of float64, so both shapes are accepted. A pool referencing a child
// index outside [0, children) — persisted state from a tree whose child
// list has since changed — is treated as uninitialized so the node starts
// a fresh cycle instead of indexing past its children.
func poolFromMemory(mem map[string]any, children int) ([]int, bool) {
	if mem == nil {
		return nil, false
	}
	raw, ok := mem[poolKey]
	if !ok {
		return nil, false
	}
	var pool []int
	switch v := raw.(type) {
	case []int:
		pool = v
	case []any:
		pool = make([]int, 0, len(v))
		for _, elem := range v {
			switch n := elem.(type) {
			case int:
				pool = append(pool, n)
			case int64:
				pool = append(pool, int(n))
			case float64:
				pool = append(pool, int(n))
			default:
				return nil, false
			}
		}
	default:
		return nil, false
	}
	for _, idx := range pool {
		if idx < 0 || idx >= children {
			return nil, false
		}
	}
	return pool, true
}
