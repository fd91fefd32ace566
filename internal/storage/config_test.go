package storage

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigFromEnvOverridePath(t *testing.T) {
	t.Setenv("LEDGERLINE_DB_MODE", "")
	t.Setenv("LEDGERLINE_DB_PATH", "/tmp/ledgerline-custom.db")

	cfg, err := configFromEnv()
	if err != nil {
		t.Fatalf("configFromEnv() unexpected error: %v", err)
	}
	if cfg.Mode != ModeSecure {
		t.Fatalf("cfg.Mode = %q, want %q", cfg.Mode, ModeSecure)
	}
	if cfg.Path != "/tmp/ledgerline-custom.db" {
		t.Fatalf("cfg.Path = %q, want %q", cfg.Path, "/tmp/ledgerline-custom.db")
	}
}

func TestConfigFromEnvPlainMode(t *testing.T) {
	t.Setenv("LEDGERLINE_DB_MODE", " Plain ")
	t.Setenv("LEDGERLINE_DB_PATH", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := configFromEnv()
	if err != nil {
		t.Fatalf("configFromEnv() unexpected error: %v", err)
	}
	if cfg.Mode != ModePlain {
		t.Fatalf("cfg.Mode = %q, want %q", cfg.Mode, ModePlain)
	}
	if filepath.Base(cfg.Path) != "ledgerline.db" {
		t.Fatalf("cfg.Path = %q, want a ledgerline.db default", cfg.Path)
	}
}

func TestConfigFromEnvRejectsUnknownMode(t *testing.T) {
	t.Setenv("LEDGERLINE_DB_MODE", "memory")

	_, err := configFromEnv()
	if err == nil {
		t.Fatal("configFromEnv() error = nil, want non-nil")
	}
	if !strings.Contains(err.Error(), "LEDGERLINE_DB_MODE") {
		t.Fatalf("configFromEnv() error = %q, want mode context", err.Error())
	}
}
