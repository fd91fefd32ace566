package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LEDGERLINE_TZ",
		"LEDGERLINE_PAGE_SIZE",
		"LEDGERLINE_STALE_TTL",
		"LEDGERLINE_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("LEDGERLINE_LOG_PATH", "/tmp/ledgerline-test.log")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Location != time.Local {
		t.Fatalf("Location = %v, want time.Local", cfg.Location)
	}
	if cfg.PageSize != 500 {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, 500)
	}
	if cfg.StaleTTL != 2*time.Minute {
		t.Fatalf("StaleTTL = %v, want %v", cfg.StaleTTL, 2*time.Minute)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGERLINE_TZ", "Australia/Melbourne")
	t.Setenv("LEDGERLINE_PAGE_SIZE", " 120 ")
	t.Setenv("LEDGERLINE_STALE_TTL", "30s")
	t.Setenv("LEDGERLINE_LOG_LEVEL", "debug")
	t.Setenv("LEDGERLINE_LOG_PATH", "/var/tmp/x.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Location.String() != "Australia/Melbourne" {
		t.Fatalf("Location = %q, want %q", cfg.Location.String(), "Australia/Melbourne")
	}
	if cfg.PageSize != 120 {
		t.Fatalf("PageSize = %d, want %d", cfg.PageSize, 120)
	}
	if cfg.StaleTTL != 30*time.Second {
		t.Fatalf("StaleTTL = %v, want %v", cfg.StaleTTL, 30*time.Second)
	}
	if cfg.LogLevel != "debug" || cfg.LogPath != "/var/tmp/x.log" {
		t.Fatalf("log settings = (%q, %q), want (%q, %q)", cfg.LogLevel, cfg.LogPath, "debug", "/var/tmp/x.log")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{key: "LEDGERLINE_TZ", value: "Mars/Olympus", want: "LEDGERLINE_TZ"},
		{key: "LEDGERLINE_PAGE_SIZE", value: "0", want: "LEDGERLINE_PAGE_SIZE"},
		{key: "LEDGERLINE_PAGE_SIZE", value: "lots", want: "LEDGERLINE_PAGE_SIZE"},
		{key: "LEDGERLINE_STALE_TTL", value: "soon", want: "LEDGERLINE_STALE_TTL"},
	}
	for _, tc := range tests {
		clearEnv(t)
		t.Setenv(tc.key, tc.value)

		_, err := Load()
		if err == nil {
			t.Fatalf("Load() with %s=%q error = nil, want non-nil", tc.key, tc.value)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("Load() error = %q, want it to mention %q", err.Error(), tc.want)
		}
	}
}
