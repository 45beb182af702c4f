package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds the runtime settings read from the environment.
type Config struct {
	Port          string
	StoreBackend  string
	SQLiteDSN     string
	SeedDemo      bool
	LogLevel      string
	LogJSON       bool
	Location      *time.Location
	UrgentSweep   string // cron spec; empty disables the sweep
	AllowedOrigin string // websocket Origin check; empty allows any
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, defaultValue string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		Port:          get("PORT", "8080"),
		StoreBackend:  strings.ToLower(get("STORE_BACKEND", BackendMemory)),
		SQLiteDSN:     get("SQLITE_DSN", ":memory:"),
		LogLevel:      get("LOG_LEVEL", "info"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN"),
		UrgentSweep:   get("URGENT_SWEEP", "@every 15m"),
	}

	if cfg.StoreBackend != BackendMemory && cfg.StoreBackend != BackendSQLite {
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendSQLite, cfg.StoreBackend)
	}

	var err error
	if cfg.SeedDemo, err = strconv.ParseBool(get("SEED_DEMO", "true")); err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO: %w", err)
	}
	if cfg.LogJSON, err = strconv.ParseBool(get("LOG_JSON", "false")); err != nil {
		return nil, fmt.Errorf("invalid LOG_JSON: %w", err)
	}

	if strings.EqualFold(get("URGENT_SWEEP", ""), "off") {
		cfg.UrgentSweep = ""
	}

	tz := get("TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	return cfg, nil
}

// Now returns the current time in the configured location.
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}
