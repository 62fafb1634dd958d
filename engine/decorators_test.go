package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arborlogic/arbor/tree"
)

func TestDecorators_StatusMapping(t *testing.T) {
	tests := []struct {
		tag   string
		child tree.Status
		want  tree.Status
	}{
		{"always", tree.Success, tree.Success},
		{"always", tree.Failure, tree.Success},
		{"always", tree.Running, tree.Success},
		{"always", tree.Error, tree.Success},
		{"never", tree.Success, tree.Failure},
		{"never", tree.Failure, tree.Failure},
		{"never", tree.Running, tree.Failure},
		{"never", tree.Error, tree.Failure},
		{"invert", tree.Success, tree.Failure},
		{"invert", tree.Failure, tree.Success},
		{"invert", tree.Running, tree.Running},
		{"invert", tree.Error, tree.Error},
	}
	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.child.String(), func(t *testing.T) {
			calls := 0
			e := newTestEngine(t, map[string]Handler{
				"child": scriptedLeaf(&calls, tt.child),
			})
			root := node(tt.tag, 1, nil, node("child", 2, nil))

			res := run(t, e, tree.State{}, root)
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, 1, calls, "the child is always ticked")
		})
	}
}

func TestDecorators_KeepChildState(t *testing.T) {
	for _, tag := range []string{"always", "never", "invert"} {
		t.Run(tag, func(t *testing.T) {
			var log []string
			e := newTestEngine(t, map[string]Handler{
				"mark": recordingLeaf("mark", tree.Failure, &log),
			})
			root := node(tag, 1, nil, node("mark", 2, nil))

			res := run(t, e, tree.State{}, root)
			last, ok := res.State.Get("last")
			assert.True(t, ok, "the child's state survives the decorator")
			assert.Equal(t, "mark", last)
		})
	}
}

func TestSuccessFailureLeaves(t *testing.T) {
	e := newTestEngine(t, nil)
	s := tree.State{"keep": 1}

	res := run(t, e, s, node("success", 1, nil))
	assert.Equal(t, tree.Success, res.Status)
	v, _ := res.State.Get("keep")
	assert.Equal(t, 1, v, "state passes through untouched")

	res = run(t, e, s, node("failure", 1, nil))
	assert.Equal(t, tree.Failure, res.Status)
	v, _ = res.State.Get("keep")
	assert.Equal(t, 1, v)
}
