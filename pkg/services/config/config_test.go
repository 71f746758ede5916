package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, time.Now().Year()+1, cfg.Forecast.HorizonYear)
	assert.Equal(t, time.November, cfg.Forecast.Cutover())
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), cfg.Forecast.Activation())
	assert.Equal(t, "price-atlas.db", cfg.Storage.DuckDBPath)
	assert.Equal(t, 256, cfg.Cache.Size)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priceatlas.yaml")
	content := `
forecast:
  horizon_year: 2028
  cutover_month: 10
storage:
  duckdb_path: /tmp/atlas.db
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("PRICEATLAS_SERVER_PORT", "9090")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2028, cfg.Forecast.HorizonYear)
	assert.Equal(t, time.October, cfg.Forecast.Cutover())
	assert.Equal(t, "/tmp/atlas.db", cfg.Storage.DuckDBPath)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"cutover out of range", map[string]string{"PRICEATLAS_FORECAST_CUTOVER_MONTH": "13"}},
		{"bad activation date", map[string]string{"PRICEATLAS_FORECAST_ACTIVATION_DATE": "01/11/2025"}},
		{"bad redis addr", map[string]string{"PRICEATLAS_REDIS_ADDR": "no-port"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
