package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenWithConfig(context.Background(), Config{
		Mode: ModePlain,
		Path: filepath.Join(t.TempDir(), "ledgerline.db"),
	})
	if err != nil {
		t.Fatalf("OpenWithConfig() unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string {
	return &s
}
