package compiler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborlogic/arbor/engine"
	"github.com/arborlogic/arbor/tree"
)

// leafRegistry returns a registry with a single "leaf" tag accepting any
// config and no children, for exercising option resolution in isolation.
func leafRegistry(t *testing.T) *engine.Registry {
	t.Helper()
	reg := engine.NewRegistry()
	handler := func(_ context.Context, _ *engine.Run, s tree.State, _ *tree.Node, _ tree.Values) (tree.TickResult, error) {
		return tree.TickResult{Status: tree.Success, State: s}, nil
	}
	require.NoError(t, reg.Register("leaf", engine.NodeSpec{Handler: handler}))
	return reg
}

func compileLeaf(t *testing.T, funcs FuncTable, cfg map[string]any) (*tree.Node, error) {
	t.Helper()
	c := New(leafRegistry(t), funcs, WithSequence(new(Sequence)))
	return c.Compile(tree.New("leaf", cfg))
}

func TestResolve_PlainLiterals(t *testing.T) {
	node, err := compileLeaf(t, nil, map[string]any{
		"n":      5,
		"name":   "guard",
		"nested": map[string]any{"a": 1},
		// A sequence not led by a reserved marker is a plain value.
		"list": []any{"a", "b"},
		// A one-element sequence is too short to be a deferred reference.
		"short": []any{"per-tick-call"},
	})
	require.NoError(t, err)

	for key, want := range map[string]any{
		"n":      5,
		"name":   "guard",
		"nested": map[string]any{"a": 1},
		"list":   []any{"a", "b"},
		"short":  []any{"per-tick-call"},
	} {
		opt, ok := node.Options[key].(tree.Concrete)
		require.True(t, ok, "option %q should be concrete", key)
		assert.Equal(t, want, opt.Value)
	}
}

func TestResolve_ImmediateCall(t *testing.T) {
	calls := 0
	funcs := FuncTable{
		"answer": func(args ...any) (any, error) {
			calls++
			return 42, nil
		},
	}

	node, err := compileLeaf(t, funcs, map[string]any{
		"val": []any{"immediate-call", "answer"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "immediate call happens once, at compile time")

	opt, ok := node.Options["val"].(tree.Concrete)
	require.True(t, ok, "immediate call resolves to a concrete value")
	assert.Equal(t, 42, opt.Value)
}

func TestResolve_PerTickCall(t *testing.T) {
	calls := 0
	var gotArgs []any
	funcs := FuncTable{
		"add": func(args ...any) (any, error) {
			calls++
			gotArgs = args
			return calls, nil
		},
	}

	node, err := compileLeaf(t, funcs, map[string]any{
		"val": []any{"per-tick-call", "add", 1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, calls, "per-tick call is not invoked at compile time")

	opt, ok := node.Options["val"].(tree.Deferred)
	require.True(t, ok)
	assert.Equal(t, tree.DeferPerTick, opt.Kind)

	// Each resolution re-invokes the function with the fixed arguments.
	v, err := opt.Resolve(tree.State{})
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, []any{1, 2}, gotArgs)

	v, err = opt.Resolve(tree.State{})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestResolve_PerTickCallError(t *testing.T) {
	funcs := FuncTable{
		"boom": func(args ...any) (any, error) {
			return nil, fmt.Errorf("nope")
		},
	}
	node, err := compileLeaf(t, funcs, map[string]any{
		"val": []any{"per-tick-call", "boom"},
	})
	require.NoError(t, err, "a failing function compiles fine; it fails at tick time")

	opt := node.Options["val"].(tree.Deferred)
	_, err = opt.Resolve(tree.State{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestResolve_StateLookup(t *testing.T) {
	node, err := compileLeaf(t, nil, map[string]any{
		"val": []any{"state-lookup", "agent", "hunger"},
	})
	require.NoError(t, err)

	opt, ok := node.Options["val"].(tree.Deferred)
	require.True(t, ok)
	assert.Equal(t, tree.DeferLookup, opt.Kind)

	v, err := opt.Resolve(tree.State{"agent": map[string]any{"hunger": 7}})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	// A missing path resolves to nil rather than failing the tick.
	v, err = opt.Resolve(tree.State{})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestResolve_UnknownFunction(t *testing.T) {
	_, err := compileLeaf(t, FuncTable{}, map[string]any{
		"val": []any{"per-tick-call", "missing"},
	})
	require.Error(t, err)

	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnknownFunction, ce.Code)
	assert.Contains(t, ce.Message, `"missing"`, "names the missing function id")
	assert.Equal(t, "leaf", ce.Node, "names the node being processed")
}

func TestResolve_ImmediateCallFailure(t *testing.T) {
	funcs := FuncTable{
		"boom": func(args ...any) (any, error) {
			return nil, fmt.Errorf("bad input")
		},
	}
	_, err := compileLeaf(t, funcs, map[string]any{
		"val": []any{"immediate-call", "boom"},
	})
	require.Error(t, err)

	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrFunctionFailed, ce.Code)
	assert.Contains(t, ce.Message, "bad input")
}

func TestResolve_MalformedDeferred(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{
			name: "non-string function id",
			cfg:  map[string]any{"val": []any{"per-tick-call", 42}},
		},
		{
			name: "non-string lookup path element",
			cfg:  map[string]any{"val": []any{"state-lookup", "a", 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileLeaf(t, nil, tt.cfg)
			require.Error(t, err)
			ce, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, ErrMalformedDeferred, ce.Code)
		})
	}
}
