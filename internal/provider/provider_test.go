package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/playperu/geoquiz/internal/geoquiz"
)

// memCache is an in-memory Cache for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string]map[geoquiz.Code]geoquiz.EntityInfo
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]map[geoquiz.Code]geoquiz.EntityInfo)}
}

func (m *memCache) Get(ctx context.Context, key string) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entities, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return entities, nil
}

func (m *memCache) Put(ctx context.Context, key string, entities map[geoquiz.Code]geoquiz.EntityInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entities
	m.puts++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const primaryBody = `[
	{
		"cca2": "FR",
		"name": {"common": "France"},
		"capital": ["Paris"],
		"capitalInfo": {"latlng": [48.87, 2.33]},
		"flags": {"svg": "https://flagcdn.com/fr.svg"},
		"region": "Europe",
		"subregion": "Western Europe"
	},
	{
		"cca2": "DE",
		"name": {"common": "Germany"},
		"capital": ["Berlin"],
		"capitalInfo": {"latlng": [52.52, 13.40]},
		"flags": {"svg": "https://flagcdn.com/de.svg"},
		"region": "Europe",
		"subregion": "Central Europe"
	}
]`

const secondaryBody = `[
	{
		"alpha2Code": "FR",
		"name": "France",
		"capital": "Paris",
		"flags": {"svg": "https://flagcdn.com/fr.svg"},
		"region": "Europe",
		"subregion": "Western Europe"
	}
]`

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadFromPrimary(t *testing.T) {
	primary := jsonServer(t, http.StatusOK, primaryBody)
	secondary := jsonServer(t, http.StatusInternalServerError, "")
	cache := newMemCache()
	c := NewClient(primary.URL, secondary.URL, time.Second, cache, discardLogger())

	entities, err := c.Load(context.Background(), []geoquiz.Code{"FR", "DE"}, "test")
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	fr, ok := entities["FR"]
	if !ok {
		t.Fatal("FR missing from result")
	}
	if fr.Name != "France" || fr.Capital != "Paris" {
		t.Errorf("FR = %+v", fr)
	}
	if fr.CapitalCoord == nil || fr.CapitalCoord.Lat != 48.87 {
		t.Errorf("FR capital coord = %+v", fr.CapitalCoord)
	}
	if !fr.HasFlag() {
		t.Error("FR should have flag data")
	}

	// A successful fetch overwrites the cache entry.
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestLoadFallsBackToSecondary(t *testing.T) {
	primary := jsonServer(t, http.StatusBadGateway, "")
	secondary := jsonServer(t, http.StatusOK, secondaryBody)
	cache := newMemCache()
	c := NewClient(primary.URL, secondary.URL, time.Second, cache, discardLogger())

	entities, err := c.Load(context.Background(), []geoquiz.Code{"FR"}, "test")
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	fr, ok := entities["FR"]
	if !ok {
		t.Fatal("FR missing from result")
	}
	if fr.Name != "France" || fr.Capital != "Paris" {
		t.Errorf("FR = %+v", fr)
	}
	// The legacy shape has no capital coordinates; absence is not an error.
	if fr.HasCapital() {
		t.Error("secondary source should not yield capital coordinates")
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestLoadFallsBackToCache(t *testing.T) {
	primary := jsonServer(t, http.StatusInternalServerError, "")
	secondary := jsonServer(t, http.StatusInternalServerError, "")
	cache := newMemCache()
	cache.entries["test"] = map[geoquiz.Code]geoquiz.EntityInfo{
		"FR": {Code: "FR", Name: "France"},
	}
	c := NewClient(primary.URL, secondary.URL, time.Second, cache, discardLogger())

	entities, err := c.Load(context.Background(), []geoquiz.Code{"FR"}, "test")
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if _, ok := entities["FR"]; !ok {
		t.Error("cached FR missing from result")
	}
}

func TestLoadExhaustedSourcesFail(t *testing.T) {
	primary := jsonServer(t, http.StatusInternalServerError, "")
	secondary := jsonServer(t, http.StatusInternalServerError, "")
	c := NewClient(primary.URL, secondary.URL, time.Second, newMemCache(), discardLogger())

	_, err := c.Load(context.Background(), []geoquiz.Code{"FR"}, "test")
	if err == nil {
		t.Fatal("expected error with all sources down and an empty cache")
	}
}

func TestLoadByFeatureKeys(t *testing.T) {
	const body = `{
		"type": "FeatureCollection",
		"features": [
			{"properties": {"abbr": "CA", "label": "California"}},
			{"properties": {"abbr": "NV", "label": "Nevada"}},
			{"properties": {"label": "No Code"}}
		]
	}`
	src := jsonServer(t, http.StatusOK, body)
	cache := newMemCache()
	c := NewClient("http://unused.invalid", "http://unused.invalid", time.Second, cache, discardLogger())

	entities, err := c.LoadByFeatureKeys(context.Background(), src.URL, "abbr", "label", "states")
	if err != nil {
		t.Fatalf("loading features: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("entities = %d, want 2 (feature without code skipped)", len(entities))
	}

	ca := entities["CA"]
	if ca.Name != "California" {
		t.Errorf("CA name = %q", ca.Name)
	}
	// Feature-backed entities never support flag or capital stages.
	if ca.HasFlag() || ca.HasCapital() {
		t.Errorf("feature entity carries flag/capital data: %+v", ca)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestLoadByFeatureKeysCacheFallback(t *testing.T) {
	src := jsonServer(t, http.StatusNotFound, "")
	cache := newMemCache()
	cache.entries["states"] = map[geoquiz.Code]geoquiz.EntityInfo{
		"CA": {Code: "CA", Name: "California"},
	}
	c := NewClient("http://unused.invalid", "http://unused.invalid", time.Second, cache, discardLogger())

	entities, err := c.LoadByFeatureKeys(context.Background(), src.URL, "abbr", "label", "states")
	if err != nil {
		t.Fatalf("loading features: %v", err)
	}
	if _, ok := entities["CA"]; !ok {
		t.Error("cached CA missing from result")
	}
}

func TestLayeredCacheBackfill(t *testing.T) {
	fast := newMemCache()
	durable := newMemCache()
	durable.entries["k"] = map[geoquiz.Code]geoquiz.EntityInfo{"FR": {Code: "FR", Name: "France"}}

	layered := Layered{Fast: fast, Durable: durable}

	entities, err := layered.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := entities["FR"]; !ok {
		t.Fatal("FR missing from layered get")
	}
	// A durable hit backfills the fast tier.
	if _, ok := fast.entries["k"]; !ok {
		t.Error("fast tier not backfilled")
	}
}
