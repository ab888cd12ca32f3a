package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment holds process-level settings read from ENCOUNTERS_*
// variables. Command-line flags take precedence over these values.
type Environment struct {
	DataDir  string `env:"ENCOUNTERS_DATA_DIR" envDefault:"data/life-tables"`
	TableURL string `env:"ENCOUNTERS_TABLE_URL"`
	DBPath   string `env:"ENCOUNTERS_DB_PATH"`
	Trials   int    `env:"ENCOUNTERS_TRIALS" envDefault:"10000"`
	Workers  int    `env:"ENCOUNTERS_WORKERS" envDefault:"1"`
	LogLevel string `env:"ENCOUNTERS_LOG_LEVEL" envDefault:"info"`
	Addr     string `env:"ENCOUNTERS_ADDR" envDefault:":8080"`
	// Seconds allowed for loading life tables per request
	FetchTimeout int `env:"ENCOUNTERS_FETCH_TIMEOUT" envDefault:"5"`
}

// LoadEnvironment parses the process environment.
func LoadEnvironment() (*Environment, error) {
	var cfg Environment
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("ENCOUNTERS_TRIALS must be positive, got %d", cfg.Trials)
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("ENCOUNTERS_WORKERS must be positive, got %d", cfg.Workers)
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("ENCOUNTERS_FETCH_TIMEOUT must be positive, got %d", cfg.FetchTimeout)
	}
	return &cfg, nil
}
