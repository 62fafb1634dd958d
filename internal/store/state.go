package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arborlogic/arbor/tree"
)

// SaveState upserts a named state snapshot as JSON.
//
// Deferred option closures never live in State, so snapshots are always
// serializable; numeric values round-trip as float64, which the engine's
// handlers coerce.
func (s *Store) SaveState(ctx context.Context, name string, state tree.State) error {
	body, err := json.Marshal(map[string]any(state))
	if err != nil {
		return fmt.Errorf("marshal state %q: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO states (name, body) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, name, string(body))
	if err != nil {
		return fmt.Errorf("save state %q: %w", name, err)
	}
	return nil
}

// LoadState reads a named state snapshot. The second return value reports
// whether the snapshot exists; a missing snapshot is not an error.
func (s *Store) LoadState(ctx context.Context, name string) (tree.State, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM states WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load state %q: %w", name, err)
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, false, fmt.Errorf("unmarshal state %q: %w", name, err)
	}
	return tree.State(m), true, nil
}
