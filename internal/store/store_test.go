package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arborlogic/arbor/engine"
	"github.com/arborlogic/arbor/tree"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "arbor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveState(context.Background(), "a", tree.State{"x": 1}))
	require.NoError(t, s.Close())

	// Reopening an existing database applies the schema without clobbering.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, ok, err := s.LoadState(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestState_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LoadState(ctx, "missing")
	require.NoError(t, err, "a missing snapshot is not an error")
	assert.False(t, ok)

	in := tree.State{
		"hunger": 7,
		"name":   "wolf",
		"nested": map[string]any{"deep": true},
	}
	require.NoError(t, s.SaveState(ctx, "agent", in))

	out, ok, err := s.LoadState(ctx, "agent")
	require.NoError(t, err)
	require.True(t, ok)

	// JSON round-trips numbers as float64.
	v, _ := out.Get("hunger")
	assert.Equal(t, float64(7), v)
	v, _ = out.Get("name")
	assert.Equal(t, "wolf", v)
	v, _ = out.Get("nested")
	assert.Equal(t, map[string]any{"deep": true}, v)
}

func TestState_UpsertReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveState(ctx, "agent", tree.State{"n": 1}))
	require.NoError(t, s.SaveState(ctx, "agent", tree.State{"n": 2}))

	out, ok, err := s.LoadState(ctx, "agent")
	require.NoError(t, err)
	require.True(t, ok)
	v, _ := out.Get("n")
	assert.Equal(t, float64(2), v)
}

func TestRuns_Lifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "an empty store has no latest run")

	require.NoError(t, s.BeginRun(ctx, "tok-1", "trees/patrol.yaml"))
	require.NoError(t, s.FinishRun(ctx, "tok-1", "success"))
	require.NoError(t, s.BeginRun(ctx, "tok-2", "trees/patrol.yaml"))

	info, ok, err := s.LatestRun(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-2", info.Token)
	assert.Equal(t, "running", info.Status)
	assert.Equal(t, "trees/patrol.yaml", info.TreePath)

	err = s.FinishRun(ctx, "absent", "failure")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRecorder_FlushAndTicks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.BeginRun(ctx, "tok-1", "trees/patrol.yaml"))

	rec := s.NewRecorder()
	events := []engine.TraceEvent{
		{RunToken: "tok-1", Seq: 1, NodeID: 2, Tag: "success", Status: tree.Success},
		{RunToken: "tok-1", Seq: 2, NodeID: 3, Tag: "ghost", Status: tree.Error, Err: "no handler"},
		{RunToken: "tok-1", Seq: 3, NodeID: 1, Tag: "sequence", Status: tree.Error},
	}
	for _, ev := range events {
		rec.Tick(ev)
	}
	assert.Len(t, rec.Events(), 3)

	require.NoError(t, rec.Flush(ctx))
	assert.Empty(t, rec.Events(), "flush clears the buffer")
	require.NoError(t, rec.Flush(ctx), "flushing an empty buffer is a no-op")

	got, err := s.Ticks(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, events, got)

	got, err = s.Ticks(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecorder_FlushRequiresRun(t *testing.T) {
	s := openTestStore(t)
	rec := s.NewRecorder()
	rec.Tick(engine.TraceEvent{RunToken: "orphan", Seq: 1, NodeID: 1, Tag: "success", Status: tree.Success})

	// The ticks table references runs; an unknown token violates the
	// foreign key.
	err := rec.Flush(context.Background())
	require.Error(t, err)
}
