// Package provider resolves entity codes into entity facts. Country data is
// fetched from a primary REST source, then a secondary source with a
// different response shape, then a local cache; only when all three fail
// does a load surface an error. Feature-backed datasets are read from a
// GeoJSON feature collection instead.
package provider

import (
	"context"
	"errors"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// ErrUnavailable is returned when every data tier has been exhausted.
var ErrUnavailable = errors.New("all data sources failed")

// Provider is the engine-facing data contract.
type Provider interface {
	// Load resolves the given codes into entity facts. The cacheKey scopes
	// the fallback cache entry; every successful fetch overwrites it.
	Load(ctx context.Context, codes []geoquiz.Code, cacheKey string) (map[geoquiz.Code]geoquiz.EntityInfo, error)

	// LoadByFeatureKeys reads a GeoJSON feature collection from url,
	// extracting each feature's code and display name from the named
	// properties. Resulting entities carry no flag or capital data.
	LoadByFeatureKeys(ctx context.Context, url, codeKey, nameKey, cacheKey string) (map[geoquiz.Code]geoquiz.EntityInfo, error)
}
