package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborlogic/arbor/tree"
)

// node builds a compiled node by hand; opts become concrete options.
func node(tag string, id tree.NodeID, opts map[string]any, children ...*tree.Node) *tree.Node {
	var options tree.Options
	if len(opts) > 0 {
		options = make(tree.Options, len(opts))
		for k, v := range opts {
			options[k] = tree.Concrete{Value: v}
		}
	}
	return &tree.Node{Tag: tag, ID: id, Options: options, Children: children}
}

// recordingLeaf appends name to log on every tick, marks the state, and
// returns the given status.
func recordingLeaf(name string, status tree.Status, log *[]string) Handler {
	return func(_ context.Context, _ *Run, s tree.State, _ *tree.Node, _ tree.Values) (tree.TickResult, error) {
		*log = append(*log, name)
		return tree.TickResult{Status: status, State: s.Set("last", name)}, nil
	}
}

// scriptedLeaf returns the scripted statuses in order, repeating the last
// one, and counts its ticks.
func scriptedLeaf(calls *int, statuses ...tree.Status) Handler {
	return func(_ context.Context, _ *Run, s tree.State, _ *tree.Node, _ tree.Values) (tree.TickResult, error) {
		i := *calls
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		*calls++
		return tree.TickResult{Status: statuses[i], State: s}, nil
	}
}

// newTestEngine builds an engine over the built-ins plus the given extra
// leaves.
func newTestEngine(t *testing.T, leaves map[string]Handler, opts ...Option) *Engine {
	t.Helper()
	reg := Builtins()
	for tag, h := range leaves {
		require.NoError(t, reg.Register(tag, NodeSpec{Handler: h}))
	}
	return New(reg, opts...)
}

// run evaluates root and requires a clean (non-fatal) outcome.
func run(t *testing.T, e *Engine, s tree.State, root *tree.Node) tree.TickResult {
	t.Helper()
	res, err := e.Run(context.Background(), s, root, nil)
	require.NoError(t, err)
	return res
}
