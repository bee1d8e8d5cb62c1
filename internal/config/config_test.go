package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp keeps Load from picking up a .env of the working tree
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8084", cfg.HTTPPort)
	assert.Equal(t, "http://localhost:8080/crud/api", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 1, cfg.Backend.DefaultTentCode)
	assert.Equal(t, "local", cfg.HistoryProvider)
	assert.Equal(t, 3, cfg.GridColumns)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 1.0, cfg.TraceSampleRatio)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_port: "9000"
backend:
  base_url: http://file.example/api
  timeout: 3s
history_provider: api
kafka:
  brokers: [kafka-1:9092]
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BACKEND_BASE_URL", "http://env.example/api")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("CATALOG_CACHE_TTL", "0s")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "http://env.example/api", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Backend.CatalogCacheTTL)
	assert.Equal(t, "api", cfg.HistoryProvider)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0.25, cfg.TraceSampleRatio)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DEFAULT_TENT_CODE=4\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DEFAULT_TENT_CODE") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Backend.DefaultTentCode)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdirTemp(t)

	t.Setenv("HISTORY_PROVIDER", "mongo")
	_, err := Load()
	assert.ErrorContains(t, err, "HISTORY_PROVIDER")

	t.Setenv("HISTORY_PROVIDER", "local")
	t.Setenv("BACKEND_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "BACKEND_TIMEOUT")

	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("GRID_COLUMNS", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "GRID_COLUMNS")
}
