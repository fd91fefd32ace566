// Package config reads the runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	defaultPageSize = 500
	defaultStaleTTL = 2 * time.Minute
	appDirName      = "ledgerline"
)

type Config struct {
	Location *time.Location
	PageSize int
	StaleTTL time.Duration
	LogPath  string
	LogLevel string
}

func Load() (Config, error) {
	cfg := Config{
		Location: time.Local,
		PageSize: defaultPageSize,
		StaleTTL: defaultStaleTTL,
		LogLevel: envOrDefault("LEDGERLINE_LOG_LEVEL", "info"),
	}

	if tz := strings.TrimSpace(os.Getenv("LEDGERLINE_TZ")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Config{}, fmt.Errorf("load LEDGERLINE_TZ %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	if raw := strings.TrimSpace(os.Getenv("LEDGERLINE_PAGE_SIZE")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid LEDGERLINE_PAGE_SIZE %q: want a positive integer", raw)
		}
		cfg.PageSize = n
	}

	if raw := strings.TrimSpace(os.Getenv("LEDGERLINE_STALE_TTL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid LEDGERLINE_STALE_TTL %q: want a duration like 2m", raw)
		}
		cfg.StaleTTL = d
	}

	if p := strings.TrimSpace(os.Getenv("LEDGERLINE_LOG_PATH")); p != "" {
		cfg.LogPath = p
	} else {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve user config dir: %w", err)
		}
		cfg.LogPath = filepath.Join(base, appDirName, "ledgerline.log")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
