package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/geoquiz/internal/catalog"
	"github.com/playperu/geoquiz/internal/engine"
	"github.com/playperu/geoquiz/internal/geoquiz"
)

type stubProvider struct {
	entities map[geoquiz.Code]geoquiz.EntityInfo
}

func (s *stubProvider) Load(ctx context.Context, codes []geoquiz.Code, cacheKey string) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	return s.entities, nil
}

func (s *stubProvider) LoadByFeatureKeys(ctx context.Context, url, codeKey, nameKey, cacheKey string) (map[geoquiz.Code]geoquiz.EntityInfo, error) {
	return s.entities, nil
}

type stubSettings struct {
	cfg geoquiz.Settings
}

func (s *stubSettings) Load(ctx context.Context) (geoquiz.Settings, error) { return s.cfg, nil }
func (s *stubSettings) Save(ctx context.Context, cfg geoquiz.Settings) error {
	s.cfg = cfg
	return nil
}

func gameRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cat := catalog.New([]catalog.Entry{
		{ID: "pair", Name: "Pair", Codes: []geoquiz.Code{"FR", "DE"}, SupportsFlags: true, SupportsCapitals: true, CacheKey: "pair"},
	})
	prov := &stubProvider{entities: map[geoquiz.Code]geoquiz.EntityInfo{
		"FR": {Code: "FR", Name: "France", Capital: "Paris", FlagRef: "fr.svg", CapitalCoord: &geoquiz.LatLng{Lat: 48.87, Lng: 2.33}},
		"DE": {Code: "DE", Name: "Germany", Capital: "Berlin", FlagRef: "de.svg", CapitalCoord: &geoquiz.LatLng{Lat: 52.52, Lng: 13.40}},
	}}

	eng := engine.New(context.Background(), logger, prov, cat, &stubSettings{},
		engine.WithRand(rand.New(rand.NewSource(1))))
	if err := eng.LoadDataset(context.Background(), "pair"); err != nil {
		t.Fatalf("loading dataset: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/api/catalog", handleCatalog(cat))
	r.Get("/api/game/state", handleGameState(eng))
	r.Post("/api/game/select", handleSelect(eng))
	r.Post("/api/game/action", handleAction(eng))
	r.Post("/api/game/settings", handleSettings(eng))
	r.Post("/api/game/reset", handleReset(eng))
	r.Post("/api/game/dataset", handleDataset(logger, eng, cat))
	return r
}

func getProjection(t *testing.T, r *chi.Mux) engine.Projection {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/game/state", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("state: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var p engine.Projection
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decoding projection: %v", err)
	}
	return p
}

func postJSON(t *testing.T, r *chi.Mux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGameStateAfterLoad(t *testing.T) {
	r := gameRouter(t)

	p := getProjection(t, r)
	if p.Dataset != "pair" {
		t.Errorf("dataset = %q, want pair", p.Dataset)
	}
	if p.Target == nil {
		t.Fatal("no target in projection")
	}
	if c := p.Target.Code; c != "FR" && c != "DE" {
		t.Errorf("target = %q, want FR or DE", c)
	}
	if !p.Action.Disabled {
		t.Error("action should be disabled with no candidate selected")
	}
}

func TestSelectAndConfirmFlow(t *testing.T) {
	r := gameRouter(t)

	target := getProjection(t, r).Target.Code

	w := postJSON(t, r, "/api/game/select", SelectRequest{Code: string(target)})
	if w.Code != http.StatusOK {
		t.Fatalf("select: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var p engine.Projection
	json.NewDecoder(w.Body).Decode(&p)
	if p.Selected == nil || p.Selected.Code != target {
		t.Fatalf("selected = %v, want %q", p.Selected, target)
	}
	if p.Action.Disabled {
		t.Error("action should be enabled with a candidate selected")
	}

	w = postJSON(t, r, "/api/game/action", nil)
	json.NewDecoder(w.Body).Decode(&p)
	if !p.Revealed {
		t.Fatal("round not revealed after action")
	}
	if p.LastCorrect == nil || !*p.LastCorrect {
		t.Error("correct guess not scored as correct")
	}
	if p.Action.Label != "Next" {
		t.Errorf("action label = %q, want Next", p.Action.Label)
	}
}

func TestSelectValidation(t *testing.T) {
	r := gameRouter(t)

	w := postJSON(t, r, "/api/game/select", SelectRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty code: expected 400, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/game/select", bytes.NewReader([]byte("{")))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected 400, got %d", w2.Code)
	}
}

func TestSettingsToggle(t *testing.T) {
	r := gameRouter(t)

	on := true
	w := postJSON(t, r, "/api/game/settings", SettingsRequest{FlagsEnabled: &on})
	if w.Code != http.StatusOK {
		t.Fatalf("settings: expected 200, got %d", w.Code)
	}
	var p engine.Projection
	json.NewDecoder(w.Body).Decode(&p)
	if !p.Settings.FlagsEnabled {
		t.Error("flags toggle not applied")
	}
	if p.Settings.CapitalsEnabled {
		t.Error("capitals toggle changed without being requested")
	}
}

func TestResetGame(t *testing.T) {
	r := gameRouter(t)

	target := getProjection(t, r).Target.Code
	postJSON(t, r, "/api/game/select", SelectRequest{Code: string(target)})
	postJSON(t, r, "/api/game/action", nil)

	w := postJSON(t, r, "/api/game/reset", nil)
	var p engine.Projection
	json.NewDecoder(w.Body).Decode(&p)
	if len(p.Found) != 0 || p.Revealed {
		t.Error("reset did not clear the session")
	}
	if p.Target == nil {
		t.Error("reset did not pick a fresh target")
	}
}

func TestDatasetSwitchUnknown(t *testing.T) {
	r := gameRouter(t)

	w := postJSON(t, r, "/api/game/dataset", DatasetRequest{ID: "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestCatalogList(t *testing.T) {
	r := gameRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp CatalogResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Datasets) != 1 || resp.Datasets[0].ID != "pair" {
		t.Errorf("datasets = %+v", resp.Datasets)
	}
}
