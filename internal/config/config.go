package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/geoquiz.db"`
	RedisURL string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// Entity data sources. The secondary serves the legacy response shape
	// and is only tried after the primary fails.
	PrimaryAPIURL   string        `env:"PRIMARY_API_URL" envDefault:"https://restcountries.com/v3.1"`
	SecondaryAPIURL string        `env:"SECONDARY_API_URL" envDefault:"https://restcountries.eu/rest/v2"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"12s"`

	DefaultDataset string `env:"DEFAULT_DATASET" envDefault:"world"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
