package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "LOG_LEVEL", "CATALOG_SOURCE", "DB_PATH",
		"DEFAULT_BATCH_SIZE", "DEFAULT_MARGIN", "FETCH_TIMEOUT", "S3_REGION", "S3_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "./data/ingredients.csv", cfg.CatalogSource)
	assert.Equal(t, 12.0, cfg.DefaultBatchSize)
	assert.Equal(t, 3.0, cfg.DefaultMargin)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.UsesSQLiteCatalog())
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("CATALOG_SOURCE", "SQLite")
	t.Setenv("DEFAULT_BATCH_SIZE", "24")
	t.Setenv("DEFAULT_MARGIN", "1.5")
	t.Setenv("FETCH_TIMEOUT", "3s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.True(t, cfg.UsesSQLiteCatalog())
	assert.Equal(t, 24.0, cfg.DefaultBatchSize)
	assert.Equal(t, 1.5, cfg.DefaultMargin)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("DEFAULT_BATCH_SIZE", "0")
	t.Setenv("DEFAULT_MARGIN", "lots")
	t.Setenv("FETCH_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 12.0, cfg.DefaultBatchSize)
	assert.Equal(t, 3.0, cfg.DefaultMargin)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Len(t, cfg.Warnings, 3)
}

func TestLoad_DotEnvDoesNotOverwriteEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORT", "7000")
	// godotenv only fills variables that are absent, not merely empty.
	_ = os.Unsetenv("LOG_LEVEL")
	if err := os.WriteFile(".env", []byte("PORT=8000\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	cfg := Load()

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}
