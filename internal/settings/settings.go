// Package settings persists the difficulty toggles across sessions as a
// single key-value row in SQLite.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

const settingsKey = "difficulty"

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load reads the persisted settings. A missing or corrupt row yields the
// zero value (both toggles off), never an error a caller must handle
// differently.
func (s *Store) Load(ctx context.Context) (geoquiz.Settings, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings WHERE key = ?
	`, settingsKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return geoquiz.Settings{}, nil
	}
	if err != nil {
		return geoquiz.Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	var cfg geoquiz.Settings
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return geoquiz.Settings{}, nil
	}
	return cfg, nil
}

// Save rewrites the persisted settings. Called on every toggle change.
func (s *Store) Save(ctx context.Context, cfg geoquiz.Settings) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, settingsKey, string(payload))
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}
