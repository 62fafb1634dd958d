package engine

import (
	"context"
	"fmt"

	"github.com/arborlogic/arbor/tree"
)

// tickSequence ticks children in order, stopping at the first result that
// failed or is in progress and returning it unchanged. SUCCESS only after
// every child succeeded.
func tickSequence(ctx context.Context, r *Run, s tree.State, n *tree.Node, _ tree.Values) (tree.TickResult, error) {
	res := tree.TickResult{Status: tree.Success, State: s}
	for _, child := range n.Children {
		var err error
		res, err = r.Tick(ctx, res.State, child)
		if err != nil {
			return res, err
		}
		if res.Status.Failed() || res.Status.InProgress() {
			return res, nil
		}
	}
	return tree.TickResult{Status: tree.Success, State: res.State}, nil
}

// tickSelector ticks children in order, returning the first succeeded
// result unchanged. FAILURE if no child succeeds.
func tickSelector(ctx context.Context, r *Run, s tree.State, n *tree.Node, _ tree.Values) (tree.TickResult, error) {
	res := tree.TickResult{State: s}
	for _, child := range n.Children {
		var err error
		res, err = r.Tick(ctx, res.State, child)
		if err != nil {
			return res, err
		}
		if res.Status.Succeeded() {
			return res, nil
		}
	}
	return tree.TickResult{Status: tree.Failure, State: res.State}, nil
}

type probabilityOptions struct {
	P float64 `mapstructure:"p"`
}

// tickSelectorP is a selector that attempts each child only when a fresh
// uniform sample lands under p. A skipped child behaves like a failed one:
// the scan moves on. FAILURE when the scan exhausts without a success.
func tickSelectorP(ctx context.Context, r *Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o probabilityOptions
	if err := DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("selector-p node %d: %w", n.ID, err)
	}

	res := tree.TickResult{State: s}
	for _, child := range n.Children {
		if r.Rand().Float64() >= o.P {
			continue
		}
		var err error
		res, err = r.Tick(ctx, res.State, child)
		if err != nil {
			return res, err
		}
		if res.Status.Succeeded() {
			return res, nil
		}
	}
	return tree.TickResult{Status: tree.Failure, State: res.State}, nil
}

type countOptions struct {
	Count int `mapstructure:"count"`
}

// tickLoop ticks its single child exactly count times, aborting on the
// first failed result and propagating it. SUCCESS after count consecutive
// successes.
func tickLoop(ctx context.Context, r *Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o countOptions
	if err := DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("loop node %d: %w", n.ID, err)
	}

	child := n.Children[0]
	res := tree.TickResult{Status: tree.Success, State: s}
	for i := 0; i < o.Count; i++ {
		var err error
		res, err = r.Tick(ctx, res.State, child)
		if err != nil {
			return res, err
		}
		if res.Status.Failed() {
			return res, nil
		}
	}
	return tree.TickResult{Status: tree.Success, State: res.State}, nil
}

// tickLoopUntilSuccess ticks its single child up to count times, returning
// the first succeeded result immediately. FAILURE after count unsuccessful
// attempts.
func tickLoopUntilSuccess(ctx context.Context, r *Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o countOptions
	if err := DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("loop-until-success node %d: %w", n.ID, err)
	}

	child := n.Children[0]
	res := tree.TickResult{State: s}
	for i := 0; i < o.Count; i++ {
		var err error
		res, err = r.Tick(ctx, res.State, child)
		if err != nil {
			return res, err
		}
		if res.Status.Succeeded() {
			return res, nil
		}
	}
	return tree.TickResult{Status: tree.Failure, State: res.State}, nil
}

type parallelOptions struct {
	Mode    string `mapstructure:"mode"`
	HowMany int    `mapstructure:"howMany"`
}

// tickParallel ticks every child unconditionally and sequentially — there
// is no real concurrency — tallying succeeded and failed results. The
// tally matching mode is compared against howMany: meeting or exceeding
// the threshold yields the mode's status, otherwise its opposite.
func tickParallel(ctx context.Context, r *Run, s tree.State, n *tree.Node, opts tree.Values) (tree.TickResult, error) {
	var o parallelOptions
	if err := DecodeOptions(opts, &o); err != nil {
		return tree.TickResult{Status: tree.Error, State: s}, fmt.Errorf("parallel node %d: %w", n.ID, err)
	}
	if o.Mode != "success" && o.Mode != "failure" {
		return tree.TickResult{Status: tree.Error, State: s},
			fmt.Errorf("parallel node %d: mode must be \"success\" or \"failure\", got %q", n.ID, o.Mode)
	}

	var successes, failures int
	res := tree.TickResult{State: s}
	for _, child := range n.Children {
		var err error
		res, err = r.Tick(ctx, res.State, child)
		if err != nil {
			return res, err
		}
		if res.Status.Succeeded() {
			successes++
		} else {
			failures++
		}
	}

	if o.Mode == "success" {
		if successes >= o.HowMany {
			return tree.TickResult{Status: tree.Success, State: res.State}, nil
		}
		return tree.TickResult{Status: tree.Failure, State: res.State}, nil
	}
	if failures >= o.HowMany {
		return tree.TickResult{Status: tree.Failure, State: res.State}, nil
	}
	return tree.TickResult{Status: tree.Success, State: res.State}, nil
}
