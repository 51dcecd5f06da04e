package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr                 = ":8000"
	defaultSessionTTL           = 30 * 24 * time.Hour
	defaultRequestTimeout       = 10 * time.Second
	defaultReconcileInterval    = time.Hour
	defaultSessionPurgeInterval = 6 * time.Hour
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL          string
	DatabaseName         string
	Addr                 string
	SessionTTL           time.Duration
	RequestTimeout       time.Duration
	ReconcileInterval    time.Duration
	SessionPurgeInterval time.Duration
}

// DatabaseConfigured reports whether both store settings are present.
func (c Config) DatabaseConfigured() bool {
	return c.DatabaseURL != "" && c.DatabaseName != ""
}

// Load reads a .env file when present, then the environment, with defaults.
// Missing database settings are not an error here; they are reported by the
// diagnostics endpoint and turn persistence calls into 500s.
func Load(envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}

	cfg := Config{
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DatabaseName: strings.TrimSpace(os.Getenv("DATABASE_NAME")),
		Addr:         strings.TrimSpace(os.Getenv("ADDR")),
	}

	if cfg.Addr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			cfg.Addr = ":" + port
		} else {
			cfg.Addr = defaultAddr
		}
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", defaultRequestTimeout); err != nil {
		return cfg, err
	}
	if cfg.ReconcileInterval, err = durationEnv("RECONCILE_INTERVAL", defaultReconcileInterval); err != nil {
		return cfg, err
	}
	if cfg.SessionPurgeInterval, err = durationEnv("SESSION_PURGE_INTERVAL", defaultSessionPurgeInterval); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// durationEnv parses a Go duration; "0" disables the setting.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if raw == "0" {
		return 0, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a non-negative duration, got %q", key, raw)
	}
	return value, nil
}
