package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "DATABASE_NAME", "ADDR", "PORT",
		"SESSION_TTL", "REQUEST_TIMEOUT", "RECONCILE_INTERVAL", "SESSION_PURGE_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":8000" {
		t.Fatalf("addr = %q, want :8000", cfg.Addr)
	}
	if cfg.SessionTTL != 30*24*time.Hour || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.DatabaseConfigured() {
		t.Fatalf("expected database to be unconfigured")
	}
}

func TestLoadFromEnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_NAME", "from-process")

	path := filepath.Join(t.TempDir(), ".env")
	content := "DATABASE_URL=sqlite:./data\nDATABASE_NAME=from-file\nPORT=9090\nSESSION_TTL=2h\nRECONCILE_INTERVAL=0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// t.Setenv("X", "") leaves X set, so unset the keys the file provides.
	for _, key := range []string{"DATABASE_URL", "PORT", "SESSION_TTL", "RECONCILE_INTERVAL"} {
		os.Unsetenv(key)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DatabaseURL != "sqlite:./data" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.DatabaseName != "from-process" {
		t.Fatalf("database name = %q, want process value", cfg.DatabaseName)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("addr = %q, want :9090", cfg.Addr)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("session ttl = %v", cfg.SessionTTL)
	}
	if cfg.ReconcileInterval != 0 {
		t.Fatalf("reconcile interval = %v, want disabled", cfg.ReconcileInterval)
	}
	if !cfg.DatabaseConfigured() {
		t.Fatalf("expected database to be configured")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error for invalid REQUEST_TIMEOUT")
	}
}
