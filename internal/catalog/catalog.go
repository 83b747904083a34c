// Package catalog defines the selectable map configurations: which entity
// codes are in play per map, which stages the map supports, and where the
// provider should source entity facts from.
package catalog

import (
	"errors"
	"fmt"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// ErrConfig marks a catalog entry that cannot be loaded as declared.
// It is surfaced to the player the same way a load failure is.
var ErrConfig = errors.New("invalid catalog entry")

// ErrNotFound is returned when an entry ID is unknown.
var ErrNotFound = errors.New("catalog entry not found")

// Entry describes one selectable map.
//
// Code-backed entries list their entity codes explicitly and are resolved
// through the country data provider. Feature-backed entries point at a
// GeoJSON feature collection instead; FeatureCodeKey and FeatureNameKey name
// the feature properties holding each entity's code and display name.
type Entry struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Codes            []geoquiz.Code `json:"codes,omitempty"`
	SupportsFlags    bool           `json:"supportsFlags"`
	SupportsCapitals bool           `json:"supportsCapitals"`
	CacheKey         string         `json:"-"`
	Center           geoquiz.LatLng `json:"center"`
	Zoom             int            `json:"zoom"`
	FeatureURL       string         `json:"-"`
	FeatureCodeKey   string         `json:"-"`
	FeatureNameKey   string         `json:"-"`
}

// FeatureBacked reports whether this entry is resolved from a GeoJSON
// feature collection rather than the country data provider.
func (e Entry) FeatureBacked() bool {
	return e.FeatureURL != "" || e.FeatureCodeKey != "" || e.FeatureNameKey != ""
}

// Validate checks the entry before any fetch is attempted.
func (e Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrConfig)
	}
	if e.CacheKey == "" {
		return fmt.Errorf("%w %q: missing cache key", ErrConfig, e.ID)
	}
	if e.FeatureBacked() {
		if e.FeatureURL == "" || e.FeatureCodeKey == "" || e.FeatureNameKey == "" {
			return fmt.Errorf("%w %q: feature-backed entry requires url, code key and name key", ErrConfig, e.ID)
		}
		return nil
	}
	if len(e.Codes) == 0 {
		return fmt.Errorf("%w %q: no entity codes", ErrConfig, e.ID)
	}
	return nil
}

// Catalog is an ordered, immutable set of entries.
type Catalog struct {
	entries []Entry
	byID    map[string]Entry
}

// New builds a catalog from the given entries. Entries are kept in order
// for listing; duplicate IDs keep the first occurrence.
func New(entries []Entry) *Catalog {
	c := &Catalog{byID: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, ok := c.byID[e.ID]; ok {
			continue
		}
		c.entries = append(c.entries, e)
		c.byID[e.ID] = e
	}
	return c
}

// Get resolves an entry by ID.
func (c *Catalog) Get(id string) (Entry, error) {
	e, ok := c.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return e, nil
}

// List returns the entries in declaration order.
func (c *Catalog) List() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
