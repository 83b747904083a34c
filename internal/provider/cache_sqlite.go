package provider

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// SQLiteCache is the durable cache tier, one JSON payload per cache key.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `
		SELECT payload FROM entity_cache WHERE cache_key = ?
	`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %q: %w", key, err)
	}

	var entities map[geoquiz.Code]geoquiz.EntityInfo
	if err := json.Unmarshal([]byte(payload), &entities); err != nil {
		// A corrupt row is as good as a miss.
		return nil, ErrCacheMiss
	}
	return entities, nil
}

func (c *SQLiteCache) Put(ctx context.Context, key string, entities map[geoquiz.Code]geoquiz.EntityInfo) error {
	payload, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("encoding cache entry %q: %w", key, err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO entity_cache (cache_key, payload, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, key, string(payload))
	if err != nil {
		return fmt.Errorf("writing cache entry %q: %w", key, err)
	}
	return nil
}
