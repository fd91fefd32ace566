package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Category struct {
	ID       string
	Name     string
	ParentID *string
}

type CategoriesRepo struct {
	db *sql.DB
}

func NewCategoriesRepo(db *sql.DB) *CategoriesRepo {
	return &CategoriesRepo{db: db}
}

// ReplaceSnapshot upserts categories and deactivates every category missing
// from the snapshot.
func (r *CategoriesRepo) ReplaceSnapshot(ctx context.Context, categories []Category, fetchedAt time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin categories snapshot transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	fetchedValue := fetchedAt.UTC().Format(time.RFC3339Nano)
	if _, err = tx.ExecContext(ctx, `UPDATE categories SET is_active = 0`); err != nil {
		return fmt.Errorf("deactivate categories: %w", err)
	}
	for _, cat := range categories {
		if _, err = tx.ExecContext(
			ctx,
			`INSERT INTO categories (id, name, parent_id, last_fetched_at, is_active)
			 VALUES (?, ?, ?, ?, 1)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name,
			   parent_id = excluded.parent_id,
			   last_fetched_at = excluded.last_fetched_at,
			   is_active = 1`,
			cat.ID,
			cat.Name,
			ptrString(cat.ParentID),
			fetchedValue,
		); err != nil {
			return fmt.Errorf("upsert category %q: %w", cat.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit categories snapshot transaction: %w", err)
	}
	return nil
}

// List returns active categories, parents before children.
func (r *CategoriesRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, parent_id
FROM categories
WHERE is_active = 1
ORDER BY parent_id IS NOT NULL, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := make([]Category, 0, 64)
	for rows.Next() {
		var cat Category
		var parent sql.NullString
		if err := rows.Scan(&cat.ID, &cat.Name, &parent); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		cat.ParentID = nullStringPtr(parent)
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return out, nil
}
