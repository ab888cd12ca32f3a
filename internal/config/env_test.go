package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironment_Defaults(t *testing.T) {
	cfg, err := LoadEnvironment()
	require.NoError(t, err)

	assert.Equal(t, "data/life-tables", cfg.DataDir)
	assert.Equal(t, 10000, cfg.Trials)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5, cfg.FetchTimeout)
	assert.Empty(t, cfg.TableURL)
	assert.Empty(t, cfg.DBPath)
}

func TestLoadEnvironment_Overrides(t *testing.T) {
	t.Setenv("ENCOUNTERS_DATA_DIR", "/srv/tables")
	t.Setenv("ENCOUNTERS_TABLE_URL", "https://example.org/data/life-tables")
	t.Setenv("ENCOUNTERS_DB_PATH", "/srv/tables.db")
	t.Setenv("ENCOUNTERS_TRIALS", "2500")
	t.Setenv("ENCOUNTERS_WORKERS", "8")
	t.Setenv("ENCOUNTERS_LOG_LEVEL", "debug")
	t.Setenv("ENCOUNTERS_ADDR", "127.0.0.1:9000")

	cfg, err := LoadEnvironment()
	require.NoError(t, err)

	assert.Equal(t, "/srv/tables", cfg.DataDir)
	assert.Equal(t, "https://example.org/data/life-tables", cfg.TableURL)
	assert.Equal(t, "/srv/tables.db", cfg.DBPath)
	assert.Equal(t, 2500, cfg.Trials)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

func TestLoadEnvironment_Invalid(t *testing.T) {
	t.Setenv("ENCOUNTERS_TRIALS", "lots")
	_, err := LoadEnvironment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestLoadEnvironment_NonPositive(t *testing.T) {
	t.Setenv("ENCOUNTERS_WORKERS", "0")
	_, err := LoadEnvironment()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENCOUNTERS_WORKERS")
}
