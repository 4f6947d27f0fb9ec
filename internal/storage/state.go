package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

// Load reads saved UI state synchronously
func (s *Store) Load(ctx context.Context, key string) (uistate.State, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM ui_state WHERE state_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return uistate.State{}, uistate.ErrNotFound
	}
	if err != nil {
		return uistate.State{}, fmt.Errorf("%w: %v", uistate.ErrPersistence, err)
	}
	return uistate.Unmarshal(payload), nil
}

// Save queues an upsert of UI state
func (s *Store) Save(_ context.Context, key string, st uistate.State) error {
	payload := uistate.Marshal(st)
	return s.enqueue("ui state", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO ui_state (state_key, payload, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(state_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
			key, payload)
		return err
	})
}
