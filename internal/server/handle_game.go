package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/playperu/geoquiz/internal/catalog"
	"github.com/playperu/geoquiz/internal/engine"
	"github.com/playperu/geoquiz/internal/geoquiz"
)

func handleGameState(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, eng.Snapshot())
	}
}

type SelectRequest struct {
	Code string `json:"code"`
}

func handleSelect(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Code = strings.TrimSpace(req.Code)
		if req.Code == "" {
			writeError(w, http.StatusBadRequest, "code is required")
			return
		}

		eng.SelectCandidate(geoquiz.Code(req.Code))
		writeJSON(w, http.StatusOK, eng.Snapshot())
	}
}

func handleAction(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.ConfirmOrAdvance()
		writeJSON(w, http.StatusOK, eng.Snapshot())
	}
}

// SettingsRequest carries the difficulty toggles to change. Omitted
// fields are left as they are.
type SettingsRequest struct {
	FlagsEnabled    *bool `json:"flagsEnabled"`
	CapitalsEnabled *bool `json:"capitalsEnabled"`
}

func handleSettings(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.FlagsEnabled != nil {
			eng.SetFlagsEnabled(r.Context(), *req.FlagsEnabled)
		}
		if req.CapitalsEnabled != nil {
			eng.SetCapitalsEnabled(r.Context(), *req.CapitalsEnabled)
		}
		writeJSON(w, http.StatusOK, eng.Snapshot())
	}
}

func handleReset(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng.ResetGame()
		writeJSON(w, http.StatusOK, eng.Snapshot())
	}
}

type DatasetRequest struct {
	ID string `json:"id"`
}

func handleDataset(logger *slog.Logger, eng *engine.Engine, cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DatasetRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.ID == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if _, err := cat.Get(req.ID); err != nil {
			writeError(w, http.StatusNotFound, "dataset not found")
			return
		}

		// The fetch may take a while; the projection carries a loading
		// flag until it settles. Failures land in the projection's error
		// state, so the response is OK either way.
		if err := eng.LoadDataset(r.Context(), req.ID); err != nil {
			logger.Warn("dataset switch failed", "dataset", req.ID, "error", err)
		}
		writeJSON(w, http.StatusOK, eng.Snapshot())
	}
}

func handleCatalog(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CatalogResponse{Datasets: cat.List()})
	}
}

// CatalogResponse lists the selectable maps.
type CatalogResponse struct {
	Datasets []catalog.Entry `json:"datasets"`
}
