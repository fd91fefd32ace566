package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lachiem1/ledgerline/internal/auth"
)

type Mode string

const (
	ModeSecure Mode = "secure"
	ModePlain  Mode = "plain"
)

const schemaVersion = 3

type Config struct {
	Mode Mode
	Path string
}

// Open resolves the DB config from the environment and opens it.
func Open(ctx context.Context) (*sql.DB, Config, error) {
	cfg, err := configFromEnv()
	if err != nil {
		return nil, Config{}, err
	}
	db, err := OpenWithConfig(ctx, cfg)
	if err != nil {
		return nil, Config{}, err
	}
	return db, cfg, nil
}

// OpenWithConfig opens the database at cfg.Path and runs migrations.
func OpenWithConfig(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Mode {
	case ModePlain:
		db, err = openPlainSQLite(cfg.Path)
	case ModeSecure, "":
		db, err = openSecure(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown db mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openSecure(path string) (*sql.DB, error) {
	if !secureSQLiteSupported() {
		return nil, fmt.Errorf(
			"secure mode requires a sqlcipher-enabled build; rebuild with '-tags sqlcipher' or set LEDGERLINE_DB_MODE=plain",
		)
	}

	key, created, err := ensureDBKey()
	if err != nil {
		return nil, fmt.Errorf("ensure secure db key: %w", err)
	}
	if created {
		// A new key cannot decrypt files written under an old one.
		exists, err := hasLocalDBFiles(path)
		if err != nil {
			return nil, fmt.Errorf("check db files: %w", err)
		}
		if exists {
			if err := resetLocalDBFiles(path); err != nil {
				return nil, fmt.Errorf("reset db after key creation: %w", err)
			}
		}
	}

	return openSecureSQLite(path, key)
}

// Wipe removes local database files for the resolved DB path. existed is
// false when there was nothing to remove.
func Wipe() (cfg Config, existed bool, err error) {
	cfg, err = configFromEnv()
	if err != nil {
		return Config{}, false, err
	}
	existed, err = hasLocalDBFiles(cfg.Path)
	if err != nil {
		return Config{}, false, fmt.Errorf("check db files: %w", err)
	}
	if err := resetLocalDBFiles(cfg.Path); err != nil {
		return Config{}, false, fmt.Errorf("wipe local db files: %w", err)
	}
	return cfg, existed, nil
}

func configFromEnv() (Config, error) {
	cfg := Config{Mode: ModeSecure}

	switch mode := Mode(strings.ToLower(strings.TrimSpace(os.Getenv("LEDGERLINE_DB_MODE")))); mode {
	case "":
	case ModeSecure, ModePlain:
		cfg.Mode = mode
	default:
		return Config{}, fmt.Errorf("invalid LEDGERLINE_DB_MODE %q: want %q or %q", mode, ModeSecure, ModePlain)
	}

	if dbPath := strings.TrimSpace(os.Getenv("LEDGERLINE_DB_PATH")); dbPath != "" {
		cfg.Path = dbPath
		return cfg, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve user config directory: %w", err)
	}
	cfg.Path = filepath.Join(configDir, "ledgerline", "ledgerline.db")
	return cfg, nil
}

func ensureDBKey() (key string, created bool, err error) {
	key, found, err := auth.LoadDBKey()
	if err != nil {
		return "", false, err
	}
	if found {
		return key, false, nil
	}

	newKey, err := generateRandomKey()
	if err != nil {
		return "", false, err
	}

	if err := auth.SaveDBKey(newKey); err != nil {
		return "", false, err
	}
	return newKey, true, nil
}

func generateRandomKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(buf), nil
}

func hasLocalDBFiles(path string) (bool, error) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_, err := os.Stat(p)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
	}
	return false, nil
}

func resetLocalDBFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
