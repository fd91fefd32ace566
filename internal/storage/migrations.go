package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func runMigrations(ctx context.Context, db *sql.DB) error {
	const bootstrapSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  version INTEGER NOT NULL
);

INSERT OR IGNORE INTO schema_migrations (id, version) VALUES (1, 1);
`
	if _, err := db.ExecContext(ctx, bootstrapSchema); err != nil {
		return fmt.Errorf("run sqlite migrations: %w", err)
	}

	var currentVersion int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE id = 1").Scan(&currentVersion); err != nil {
		return fmt.Errorf("read sqlite schema version: %w", err)
	}

	if currentVersion > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, schemaVersion)
	}

	steps := []struct {
		version int
		schema  string
	}{
		{version: 2, schema: v2Schema},
		{version: 3, schema: v3Schema},
	}
	for _, step := range steps {
		if currentVersion >= step.version {
			continue
		}
		if err := applyMigration(ctx, db, step.version, step.schema); err != nil {
			return err
		}
		currentVersion = step.version
	}

	return nil
}

const v2Schema = `
CREATE TABLE IF NOT EXISTS sync_state (
  collection TEXT PRIMARY KEY,
  last_success_at TEXT,
  last_attempt_at TEXT,
  last_error TEXT
);

CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  account_type TEXT NOT NULL,
  ownership_type TEXT NOT NULL,
  balance_currency_code TEXT NOT NULL,
  balance_value TEXT NOT NULL,
  balance_value_in_base_units INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  display_order INTEGER NOT NULL DEFAULT 2147483647,
  last_fetched_at TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1 CHECK (is_active IN (0,1))
);

CREATE INDEX IF NOT EXISTS idx_accounts_display_order ON accounts(display_order);

CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  parent_id TEXT,
  last_fetched_at TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1 CHECK (is_active IN (0,1))
);

CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  transfer_account_id TEXT,
  category_id TEXT,
  parent_category_id TEXT,
  status TEXT NOT NULL,
  raw_text TEXT,
  description TEXT NOT NULL,
  message TEXT,
  merchant_norm TEXT NOT NULL DEFAULT '',
  amount_currency_code TEXT NOT NULL,
  amount_value TEXT NOT NULL,
  amount_value_in_base_units INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  created_unix_ms INTEGER NOT NULL,
  settled_at TEXT,
  last_fetched_at TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1 CHECK (is_active IN (0,1))
);

CREATE INDEX IF NOT EXISTS idx_transactions_created_unix_ms ON transactions(created_unix_ms);
CREATE INDEX IF NOT EXISTS idx_transactions_account_created ON transactions(account_id, created_unix_ms);
CREATE INDEX IF NOT EXISTS idx_transactions_category_id ON transactions(category_id);

CREATE TABLE IF NOT EXISTS transaction_tags (
  transaction_id TEXT NOT NULL,
  tag_id TEXT NOT NULL,
  PRIMARY KEY (transaction_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_transaction_tags_tag_id ON transaction_tags(tag_id);
`

const v3Schema = `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

func applyMigration(ctx context.Context, db *sql.DB, version int, schema string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite migration v%d transaction: %w", version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("run sqlite v%d migrations: %w", version, err)
	}
	if _, err = tx.ExecContext(ctx, "UPDATE schema_migrations SET version = ? WHERE id = 1", version); err != nil {
		return fmt.Errorf("update sqlite schema version to %d: %w", version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite v%d migrations: %w", version, err)
	}
	return nil
}
