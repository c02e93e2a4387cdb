package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort || cfg.LogLevel != defaultLogLevel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected development by default")
	}
	if len(cfg.Warnings()) != 3 {
		t.Fatalf("expected 3 warnings, got %v", cfg.Warnings())
	}
}

func TestLoad_ReadsDotEnvWithoutOverwritingEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := []byte(`
# comment
PORT=7070
export DB_PATH=/tmp/printdesk.db
SESSION_SECRET="s3cret"
STRICT_FILAMENTS=true
APP_ENV=Production
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("PORT=%q, want existing env value", cfg.Port)
	}
	if cfg.DBPath != "/tmp/printdesk.db" {
		t.Fatalf("DB_PATH=%q", cfg.DBPath)
	}
	if cfg.SessionSecret != "s3cret" {
		t.Fatalf("SESSION_SECRET=%q", cfg.SessionSecret)
	}
	if !cfg.StrictFilaments {
		t.Fatalf("expected strict filaments")
	}
	if cfg.IsDev() {
		t.Fatalf("expected production env, got %q", cfg.Env)
	}
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
