package engine

import (
	"context"

	"github.com/arborlogic/arbor/tree"
)

// tickAlways ticks its child, keeps the state it produced, and returns
// SUCCESS regardless of the child's status.
func tickAlways(ctx context.Context, r *Run, s tree.State, n *tree.Node, _ tree.Values) (tree.TickResult, error) {
	res, err := r.Tick(ctx, s, n.Children[0])
	if err != nil {
		return res, err
	}
	return tree.TickResult{Status: tree.Success, State: res.State}, nil
}

// tickNever ticks its child, keeps the state it produced, and returns
// FAILURE regardless of the child's status.
func tickNever(ctx context.Context, r *Run, s tree.State, n *tree.Node, _ tree.Values) (tree.TickResult, error) {
	res, err := r.Tick(ctx, s, n.Children[0])
	if err != nil {
		return res, err
	}
	return tree.TickResult{Status: tree.Failure, State: res.State}, nil
}

// tickInvert ticks its child and swaps SUCCESS and FAILURE. RUNNING and
// ERROR pass through unchanged: an in-progress child is still in progress
// inverted, and inversion never converts ERROR into an ordinary outcome.
func tickInvert(ctx context.Context, r *Run, s tree.State, n *tree.Node, _ tree.Values) (tree.TickResult, error) {
	res, err := r.Tick(ctx, s, n.Children[0])
	if err != nil {
		return res, err
	}
	switch res.Status {
	case tree.Success:
		res.Status = tree.Failure
	case tree.Failure:
		res.Status = tree.Success
	}
	return res, nil
}

// tickSuccess returns SUCCESS immediately with the state unchanged.
func tickSuccess(_ context.Context, _ *Run, s tree.State, _ *tree.Node, _ tree.Values) (tree.TickResult, error) {
	return tree.TickResult{Status: tree.Success, State: s}, nil
}

// tickFailure returns FAILURE immediately with the state unchanged.
func tickFailure(_ context.Context, _ *Run, s tree.State, _ *tree.Node, _ tree.Values) (tree.TickResult, error) {
	return tree.TickResult{Status: tree.Failure, State: s}, nil
}
