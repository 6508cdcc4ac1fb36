package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnv           = "development"
	defaultPort          = "5000"
	defaultLogLevel      = "info"
	defaultCatalogSource = "./data/ingredients.csv"
	defaultDBPath        = "./mercury.db"
	defaultBatchSize     = 12.0
	defaultMargin        = 3.0
	defaultFetchTimeout  = 10 * time.Second
	defaultS3Region      = "auto"

	// SQLiteCatalog selects the SQLite store as the catalog source.
	SQLiteCatalog = "sqlite"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env              string
	Port             string
	LogLevel         string
	CatalogSource    string
	DBPath           string
	DefaultBatchSize float64
	DefaultMargin    float64
	FetchTimeout     time.Duration
	S3Region         string
	S3Endpoint       string

	// Warnings lists values that were ignored in favor of their defaults.
	Warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// A missing .env is normal outside local development; existing variables win.
	_ = godotenv.Load(".env")

	cfg := Config{
		Env:           getenv("APP_ENV", defaultEnv),
		Port:          getenv("PORT", defaultPort),
		LogLevel:      getenv("LOG_LEVEL", defaultLogLevel),
		CatalogSource: getenv("CATALOG_SOURCE", defaultCatalogSource),
		DBPath:        getenv("DB_PATH", defaultDBPath),
		S3Region:      getenv("S3_REGION", defaultS3Region),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
	}

	cfg.DefaultBatchSize = cfg.positiveFloat("DEFAULT_BATCH_SIZE", defaultBatchSize)
	cfg.DefaultMargin = cfg.positiveFloat("DEFAULT_MARGIN", defaultMargin)
	cfg.FetchTimeout = cfg.duration("FETCH_TIMEOUT", defaultFetchTimeout)

	return cfg
}

// IsDev reports whether the application runs in development mode.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// UsesSQLiteCatalog reports whether the catalog is read from the SQLite store.
func (c Config) UsesSQLiteCatalog() bool {
	return strings.EqualFold(strings.TrimSpace(c.CatalogSource), SQLiteCatalog)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (c *Config) positiveFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(v > 0) {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive number, using %v", key, raw, fallback))
		return fallback
	}
	return v
}

func (c *Config) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a positive duration, using %s", key, raw, fallback))
		return fallback
	}
	return v
}
