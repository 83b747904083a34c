package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/geoquiz/internal/catalog"
	"github.com/playperu/geoquiz/internal/engine"
)

func addRoutes(r chi.Router, logger *slog.Logger, eng *engine.Engine, cat *catalog.Catalog, broker *Broker, db *sql.DB, rdb *redis.Client, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoQuiz API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db, rdb))

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", handleCatalog(cat))

		r.Get("/game/state", handleGameState(eng))
		r.Post("/game/select", handleSelect(eng))
		r.Post("/game/action", handleAction(eng))
		r.Post("/game/settings", handleSettings(eng))
		r.Post("/game/reset", handleReset(eng))
		r.Post("/game/dataset", handleDataset(logger, eng, cat))
		r.Get("/game/events", handleEvents(eng, broker))
	})

	r.Get("/ws/state", handleWSState(logger, eng, broker))

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
