package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenPlainRunsMigrations(t *testing.T) {
	db := openTestDB(t)

	var version int
	if err := db.QueryRow("SELECT version FROM schema_migrations WHERE id = 1").Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != schemaVersion {
		t.Fatalf("schema version = %d, want %d", version, schemaVersion)
	}

	for _, table := range []string{"transactions", "transaction_tags", "accounts", "categories", "sync_state", "app_config"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %q missing: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := Config{Mode: ModePlain, Path: filepath.Join(t.TempDir(), "ledgerline.db")}

	for i := 0; i < 2; i++ {
		db, err := OpenWithConfig(context.Background(), cfg)
		if err != nil {
			t.Fatalf("OpenWithConfig() #%d unexpected error: %v", i+1, err)
		}
		db.Close()
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	cfg := Config{Mode: ModePlain, Path: filepath.Join(t.TempDir(), "ledgerline.db")}
	db, err := OpenWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenWithConfig() unexpected error: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_migrations SET version = 99 WHERE id = 1"); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
	db.Close()

	if _, err := OpenWithConfig(context.Background(), cfg); err == nil {
		t.Fatal("OpenWithConfig() error = nil for newer schema, want non-nil")
	}
}
