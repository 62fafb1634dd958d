// Package behaviors provides example leaf node types: small state
// predicates and mutators useful for demos and tests. They register
// through the same Registry extension point as the built-in control nodes
// — nothing distinguishes a leaf shipped here from one an embedding
// application registers itself.
package behaviors

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/expr-lang/expr"

	"github.com/arborlogic/arbor/engine"
	"github.com/arborlogic/arbor/tree"
)

// Register adds the example leaves to a registry:
//
//	counter!    increment an integer at a state key, SUCCESS
//	store!      write a value to a state key, SUCCESS
//	present?    SUCCESS when a state key is present
//	less-than?  SUCCESS when state[key] < val
//	test?       compare state[key] against val with an operator
//	eval?       evaluate a boolean expression against the state
func Register(r *engine.Registry) error {
	leaves := map[string]engine.NodeSpec{
		"counter!":   {Handler: tickCounter, Options: []string{"key"}},
		"store!":     {Handler: tickStore, Options: []string{"key", "val"}},
		"present?":   {Handler: tickPresent, Options: []string{"key"}},
		"less-than?": {Handler: tickLessThan, Options: []string{"key", "val"}},
		"test?":      {Handler: tickTest, Options: []string{"key", "val"}},
		"eval?":      {Handler: tickEval, Options: []string{"expr"}},
	}
	for tag, spec := range leaves {
		if err := r.Register(tag, spec); err != nil {
			return fmt.Errorf("register behaviors: %w", err)
		}
	}
	return nil
}

type keyOptions struct {
	Key string `mapstructure:"key"`
}

type keyValOptions struct {
	Key string `mapstructure:"key"`
	Val any    `mapstructure:"val"`
}

type testOptions struct {
	Key  string `mapstructure:"key"`
	Val  any    `mapstructure:"val"`
	Oper string `mapstructure:"oper"`
}

// tickCounter increments the integer stored at key, treating an absent or
// non-numeric value as 0.
func tickCounter(_ context.Context, _ *engine.Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o keyOptions
	if err := engine.DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("counter! node %d: %w", n.ID, err)
	}
	var cur int64
	if v, ok := s.Get(o.Key); ok {
		cur, _ = asInt(v)
	}
	return tree.TickResult{Status: tree.Success, State: s.Set(o.Key, cur+1)}, nil
}

// tickStore writes val to key. val may be a deferred option, so stored
// values can track the current state or a per-tick call.
func tickStore(_ context.Context, _ *engine.Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o keyValOptions
	if err := engine.DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("store! node %d: %w", n.ID, err)
	}
	return tree.TickResult{Status: tree.Success, State: s.Set(o.Key, o.Val)}, nil
}

// tickPresent succeeds when key is present in the state.
func tickPresent(_ context.Context, _ *engine.Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o keyOptions
	if err := engine.DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("present? node %d: %w", n.ID, err)
	}
	if _, ok := s.Get(o.Key); ok {
		return tree.TickResult{Status: tree.Success, State: s}, nil
	}
	return tree.TickResult{Status: tree.Failure, State: s}, nil
}

// tickLessThan succeeds when the integer at key is strictly below val.
func tickLessThan(_ context.Context, _ *engine.Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o keyValOptions
	if err := engine.DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("less-than? node %d: %w", n.ID, err)
	}
	cur, curOK := lookupInt(s, o.Key)
	limit, limitOK := asInt(o.Val)
	if curOK && limitOK && cur < limit {
		return tree.TickResult{Status: tree.Success, State: s}, nil
	}
	return tree.TickResult{Status: tree.Failure, State: s}, nil
}

// tickTest compares state[key] against val. Operators: = != < <= > >=
// (default =). Ordering operators require both sides numeric; equality
// falls back to deep equality for non-numeric values.
func tickTest(_ context.Context, _ *engine.Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	o := testOptions{Oper: "="}
	if err := engine.DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("test? node %d: %w", n.ID, err)
	}

	cur, curPresent := s.Get(o.Key)
	if !curPresent {
		return tree.TickResult{Status: tree.Failure, State: s}, nil
	}

	left, leftNum := asInt(cur)
	right, rightNum := asInt(o.Val)
	numeric := leftNum && rightNum

	var pass bool
	switch o.Oper {
	case "=":
		if numeric {
			pass = left == right
		} else {
			pass = reflect.DeepEqual(cur, o.Val)
		}
	case "!=":
		if numeric {
			pass = left != right
		} else {
			pass = !reflect.DeepEqual(cur, o.Val)
		}
	case "<":
		pass = numeric && left < right
	case "<=":
		pass = numeric && left <= right
	case ">":
		pass = numeric && left > right
	case ">=":
		pass = numeric && left >= right
	default:
		return tree.TickResult{Status: tree.Error, State: s},
			fmt.Errorf("test? node %d: unknown operator %q", n.ID, o.Oper)
	}

	if pass {
		return tree.TickResult{Status: tree.Success, State: s}, nil
	}
	return tree.TickResult{Status: tree.Failure, State: s}, nil
}

type evalOptions struct {
	Expr string `mapstructure:"expr"`
}

// tickEval evaluates a boolean expression against the state, e.g.
// "hunger > 3 && !sleeping". An evaluation failure or a non-boolean
// result yields ERROR: the tree author asked a question the state cannot
// answer, continuing is meaningless.
func tickEval(_ context.Context, _ *engine.Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o evalOptions
	if err := engine.DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("eval? node %d: %w", n.ID, err)
	}
	out, err := expr.Eval(o.Expr, map[string]any(s))
	if err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, nil
	}
	pass, ok := out.(bool)
	if !ok {
		return tree.TickResult{Status: tree.Error, State: s}, nil
	}
	if pass {
		return tree.TickResult{Status: tree.Success, State: s}, nil
	}
	return tree.TickResult{Status: tree.Failure, State: s}, nil
}

// lookupInt reads an integer from a top-level state key.
func lookupInt(s tree.State, key string) (int64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	return asInt(v)
}

// asInt coerces the numeric representations that reach handlers from Go
// code, YAML decoding and JSON state round-trips.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		return int64(n), float64(int64(n)) == n
	default:
		return 0, false
	}
}
