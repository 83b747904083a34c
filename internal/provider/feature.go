package provider

import (
	"context"
	"fmt"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// featureCollection is the subset of GeoJSON the feature loader needs.
type featureCollection struct {
	Features []struct {
		ID         any            `json:"id"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// LoadByFeatureKeys reads a GeoJSON feature collection and produces one
// entity per feature, taking the code and display name from the named
// properties. Features missing either property are skipped. Entities carry
// no flag or capital data, so those stages are never applicable for
// feature-backed datasets. Falls back to the cache on fetch failure.
func (c *Client) LoadByFeatureKeys(ctx context.Context, url, codeKey, nameKey, cacheKey string) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	var fc featureCollection
	if err := c.getJSON(ctx, url, &fc); err != nil {
		c.logger.Warn("feature source failed", "cache_key", cacheKey, "error", err)
		if entities, cerr := c.cache.Get(ctx, cacheKey); cerr == nil && len(entities) > 0 {
			c.logger.Info("serving features from cache", "cache_key", cacheKey, "count", len(entities))
			return entities, nil
		}
		return nil, fmt.Errorf("loading %q: %w", cacheKey, ErrUnavailable)
	}

	entities := make(map[geoquiz.Code]geoquiz.EntityInfo, len(fc.Features))
	for _, f := range fc.Features {
		code := propString(f.Properties, codeKey)
		if code == "" && codeKey == "id" {
			// Some collections carry the code as the feature ID instead
			// of a property.
			code = anyString(f.ID)
		}
		name := propString(f.Properties, nameKey)
		if code == "" || name == "" {
			continue
		}
		entities[geoquiz.Code(code)] = geoquiz.EntityInfo{
			Code: geoquiz.Code(code),
			Name: name,
		}
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("loading %q: no usable features: %w", cacheKey, ErrUnavailable)
	}

	c.store(ctx, cacheKey, entities)
	return entities, nil
}

func propString(props map[string]any, key string) string {
	if props == nil {
		return ""
	}
	return anyString(props[key])
}

func anyString(v any) string {
	s, _ := v.(string)
	return s
}
