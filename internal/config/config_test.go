package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func base() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost/minaarly",
		"JWT_SECRET":   "s3cret",
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookup(base()))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "./migrations", cfg.MigrationsPath)
	assert.Equal(t, 300*time.Millisecond, cfg.MapDebounce)
	assert.Equal(t, 100, cfg.MapFetchLimit)
	assert.Equal(t, time.Minute, cfg.MapCacheTTL)
	assert.Equal(t, "eur", cfg.CheckoutCurrency)
	assert.False(t, cfg.UseSpaces)
	assert.False(t, cfg.IsProduction())
}

func TestRequired(t *testing.T) {
	_, err := FromLookup(lookup(map[string]string{"JWT_SECRET": "x"}))
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = FromLookup(lookup(map[string]string{"DATABASE_URL": "x"}))
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestOverrides(t *testing.T) {
	vars := base()
	vars["MAP_DEBOUNCE_MS"] = "150"
	vars["MAP_FETCH_LIMIT"] = "250"
	vars["CORS_ORIGINS"] = "https://minaarly.app, https://www.minaarly.app,"
	vars["APP_ENV"] = "production"

	cfg, err := FromLookup(lookup(vars))
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, cfg.MapDebounce)
	assert.Equal(t, 250, cfg.MapFetchLimit)
	assert.Equal(t, []string{"https://minaarly.app", "https://www.minaarly.app"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestInvalidValues(t *testing.T) {
	for key, value := range map[string]string{
		"MAP_DEBOUNCE_MS":   "soon",
		"MAP_FETCH_LIMIT":   "0",
		"MAP_CACHE_TTL":     "forever",
		"USE_SPACES":        "true",
		"STRIPE_SECRET_KEY": "sk_test_1",
	} {
		vars := base()
		vars[key] = value
		_, err := FromLookup(lookup(vars))
		assert.Error(t, err, key)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MINAARLY_TEST_VAR=from-file\n"), 0o600))
	t.Setenv("MINAARLY_TEST_VAR", "")
	require.NoError(t, os.Unsetenv("MINAARLY_TEST_VAR"))

	LoadDotEnv(path)
	assert.Equal(t, "from-file", os.Getenv("MINAARLY_TEST_VAR"))
}
