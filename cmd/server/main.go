package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/geoquiz/internal/catalog"
	"github.com/playperu/geoquiz/internal/config"
	"github.com/playperu/geoquiz/internal/database"
	"github.com/playperu/geoquiz/internal/engine"
	"github.com/playperu/geoquiz/internal/migrations"
	"github.com/playperu/geoquiz/internal/provider"
	"github.com/playperu/geoquiz/internal/server"
	"github.com/playperu/geoquiz/internal/settings"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Redis ---
	rdb, err := openRedis(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer rdb.Close()
	logger.Info("connected to redis")

	// --- Engine ---
	cache := provider.Layered{
		Fast:    provider.NewRedisCache(rdb),
		Durable: provider.NewSQLiteCache(db),
	}
	prov := provider.NewClient(cfg.PrimaryAPIURL, cfg.SecondaryAPIURL, cfg.FetchTimeout, cache, logger)
	cat := catalog.Default()
	broker := server.NewBroker(logger)

	eng := engine.New(ctx, logger, prov, cat, settings.NewStore(db),
		engine.WithNotify(broker.Publish))

	// Load the default dataset in the background; the engine stays in a
	// loading or error state until it settles, and the API is usable
	// throughout.
	go func() {
		if err := eng.LoadDataset(ctx, cfg.DefaultDataset); err != nil {
			logger.Error("initial dataset load failed", "dataset", cfg.DefaultDataset, "error", err)
		}
	}()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, eng, cat, broker, db, rdb, cfg.SPADir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
