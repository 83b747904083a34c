package provider

import (
	"context"
	"errors"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// ErrCacheMiss is returned by a Cache when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores the last successful load per cache key.
type Cache interface {
	Get(ctx context.Context, key string) (map[geoquiz.Code]geoquiz.EntityInfo, error)
	Put(ctx context.Context, key string, entities map[geoquiz.Code]geoquiz.EntityInfo) error
}

// Layered composes a fast tier over a durable tier. Reads try the fast
// tier first and backfill it on a durable hit; writes go to both, and a
// fast-tier write failure does not fail the Put.
type Layered struct {
	Fast    Cache
	Durable Cache
}

func (l Layered) Get(ctx context.Context, key string) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	if l.Fast != nil {
		if m, err := l.Fast.Get(ctx, key); err == nil {
			return m, nil
		}
	}
	m, err := l.Durable.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if l.Fast != nil {
		_ = l.Fast.Put(ctx, key, m)
	}
	return m, nil
}

func (l Layered) Put(ctx context.Context, key string, entities map[geoquiz.Code]geoquiz.EntityInfo) error {
	if l.Fast != nil {
		_ = l.Fast.Put(ctx, key, entities)
	}
	return l.Durable.Put(ctx, key, entities)
}
