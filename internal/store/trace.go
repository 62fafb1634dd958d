package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arborlogic/arbor/engine"
	"github.com/arborlogic/arbor/tree"
)

// RunInfo describes one recorded top-level evaluation.
type RunInfo struct {
	Token     string
	TreePath  string
	Status    string
	CreatedAt string
}

// BeginRun records a run before its ticks are written; the ticks table
// references runs by token. Status starts as "running".
func (s *Store) BeginRun(ctx context.Context, token, treePath string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (token, tree_path, status) VALUES (?, ?, 'running')`,
		token, treePath)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", token, err)
	}
	return nil
}

// FinishRun stamps a run's final status.
func (s *Store) FinishRun(ctx context.Context, token, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ? WHERE token = ?`, status, token)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", token, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: run not found", token)
	}
	return nil
}

// LatestRun returns the most recently created run, reporting ok=false on
// an empty store.
func (s *Store) LatestRun(ctx context.Context) (RunInfo, bool, error) {
	var info RunInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT token, tree_path, status, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1
	`).Scan(&info.Token, &info.TreePath, &info.Status, &info.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, false, nil
	}
	if err != nil {
		return RunInfo{}, false, fmt.Errorf("latest run: %w", err)
	}
	return info, true, nil
}

// Ticks returns a run's trace events in seq order.
func (s *Store) Ticks(ctx context.Context, token string) ([]engine.TraceEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, node_id, tag, status, err
		FROM ticks WHERE run_token = ? ORDER BY seq
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query ticks for run %s: %w", token, err)
	}
	defer rows.Close()

	var events []engine.TraceEvent
	for rows.Next() {
		ev := engine.TraceEvent{RunToken: token}
		var nodeID int64
		var status string
		if err := rows.Scan(&ev.Seq, &nodeID, &ev.Tag, &status, &ev.Err); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		ev.NodeID = tree.NodeID(nodeID)
		st, err := tree.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("tick seq %d: %w", ev.Seq, err)
		}
		ev.Status = st
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Recorder buffers trace events for one run and flushes them in a single
// transaction. It implements engine.Tracer; Tick is called synchronously
// on the evaluation path, so it only appends to memory.
type Recorder struct {
	store  *Store
	events []engine.TraceEvent
}

// NewRecorder creates a Recorder writing into this store.
func (s *Store) NewRecorder() *Recorder {
	return &Recorder{store: s}
}

// Tick implements engine.Tracer.
func (r *Recorder) Tick(ev engine.TraceEvent) {
	r.events = append(r.events, ev)
}

// Events returns the buffered events in dispatch order.
func (r *Recorder) Events() []engine.TraceEvent {
	return r.events
}

// Flush writes the buffered events and clears the buffer. The owning run
// must already exist (BeginRun).
func (r *Recorder) Flush(ctx context.Context) error {
	if len(r.events) == 0 {
		return nil
	}
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tick flush: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ticks (run_token, seq, node_id, tag, status, err)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare tick insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range r.events {
		if _, err := stmt.ExecContext(ctx,
			ev.RunToken, ev.Seq, int64(ev.NodeID), ev.Tag, ev.Status.String(), ev.Err); err != nil {
			return fmt.Errorf("insert tick seq %d: %w", ev.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tick flush: %w", err)
	}
	r.events = nil
	return nil
}
