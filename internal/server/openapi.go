package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/geoquiz/internal/engine"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoQuiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the GeoQuiz map game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/catalog
	getCatalog, _ := r.NewOperationContext(http.MethodGet, "/api/catalog")
	getCatalog.SetSummary("List maps")
	getCatalog.SetDescription("Lists the selectable map datasets.")
	getCatalog.AddRespStructure(CatalogResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCatalog)

	// GET /api/game/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/game/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the current round projection: target, pick, stage, scores, and the primary action.")
	getState.AddRespStructure(engine.Projection{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// POST /api/game/select
	postSelect, _ := r.NewOperationContext(http.MethodPost, "/api/game/select")
	postSelect.SetSummary("Pick a candidate")
	postSelect.SetDescription("Records the clicked entity as the current pick. Ignored while the round is revealed.")
	postSelect.AddReqStructure(SelectRequest{})
	postSelect.AddRespStructure(engine.Projection{}, openapi.WithHTTPStatus(http.StatusOK))
	postSelect.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postSelect)

	// POST /api/game/action
	postAction, _ := r.NewOperationContext(http.MethodPost, "/api/game/action")
	postAction.SetSummary("Confirm or advance")
	postAction.SetDescription("Scores the current pick, or starts the next round if the current one is revealed.")
	postAction.AddRespStructure(engine.Projection{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postAction)

	// POST /api/game/settings
	postSettings, _ := r.NewOperationContext(http.MethodPost, "/api/game/settings")
	postSettings.SetSummary("Change difficulty")
	postSettings.SetDescription("Flips the flag/capital toggles. Settings persist across sessions.")
	postSettings.AddReqStructure(SettingsRequest{})
	postSettings.AddRespStructure(engine.Projection{}, openapi.WithHTTPStatus(http.StatusOK))
	postSettings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postSettings)

	// POST /api/game/reset
	postReset, _ := r.NewOperationContext(http.MethodPost, "/api/game/reset")
	postReset.SetSummary("New game")
	postReset.SetDescription("Clears all progress on the loaded dataset and starts over. No data is re-fetched.")
	postReset.AddRespStructure(engine.Projection{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postReset)

	// POST /api/game/dataset
	postDataset, _ := r.NewOperationContext(http.MethodPost, "/api/game/dataset")
	postDataset.SetSummary("Switch map")
	postDataset.SetDescription("Switches the active dataset, clearing all progress and loading the new code set.")
	postDataset.AddReqStructure(DatasetRequest{})
	postDataset.AddRespStructure(engine.Projection{}, openapi.WithHTTPStatus(http.StatusOK))
	postDataset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postDataset)

	// GET /api/game/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/game/events")
	getEvents.SetSummary("SSE projection stream")
	getEvents.SetDescription("Server-Sent Events stream of game projections, one event per state change.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/state
	getWSState, _ := r.NewOperationContext(http.MethodGet, "/ws/state")
	getWSState.SetSummary("WebSocket projection stream")
	getWSState.SetDescription("Upgrades to a WebSocket that pushes game projections on every state change.")
	getWSState.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSState)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(spec)
	}
}
