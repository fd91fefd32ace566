package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type TransactionRecord struct {
	ID                     string
	AccountID              string
	TransferAccountID      *string
	CategoryID             *string
	ParentCategoryID       *string
	Status                 string
	RawText                *string
	Description            string
	Message                *string
	AmountCurrencyCode     string
	AmountValue            string
	AmountValueInBaseUnits int64
	CreatedAt              time.Time
	SettledAt              *time.Time
	TagIDs                 []string

	// MerchantNorm is derived on write and filled on read.
	MerchantNorm string
}

// Sign restricts a range read by amount direction.
type Sign int

const (
	SignAny Sign = iota
	SignIncome
	SignExpense
)

// RangeFilter selects transactions created within [Start, End].
type RangeFilter struct {
	Start time.Time
	End   time.Time
	// AccountID matches the owning account.
	AccountID string
	// CategoryID matches either the category or its parent.
	CategoryID string
	TagID      string
	Sign       Sign
	// Limit caps the rows returned. Zero means no cap.
	Limit int
}

type TransactionsRepo struct {
	db *sql.DB
}

func NewTransactionsRepo(db *sql.DB) *TransactionsRepo {
	return &TransactionsRepo{db: db}
}

// UpsertBatch writes records and their tags in one transaction. Re-writing a
// record replaces its tag set.
func (r *TransactionsRepo) UpsertBatch(ctx context.Context, records []TransactionRecord, fetchedAt time.Time) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transactions upsert transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	fetchedValue := fetchedAt.UTC().Format(time.RFC3339Nano)
	accountNames, err := loadAccountDisplayNameByID(ctx, tx)
	if err != nil {
		return err
	}

	const upsert = `
INSERT INTO transactions (
  id, account_id, transfer_account_id, category_id, parent_category_id,
  status, raw_text, description, message, merchant_norm,
  amount_currency_code, amount_value, amount_value_in_base_units,
  created_at, created_unix_ms, settled_at, last_fetched_at, is_active
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
ON CONFLICT(id) DO UPDATE SET
  account_id = excluded.account_id,
  transfer_account_id = excluded.transfer_account_id,
  category_id = excluded.category_id,
  parent_category_id = excluded.parent_category_id,
  status = excluded.status,
  raw_text = excluded.raw_text,
  description = excluded.description,
  message = excluded.message,
  merchant_norm = excluded.merchant_norm,
  amount_currency_code = excluded.amount_currency_code,
  amount_value = excluded.amount_value,
  amount_value_in_base_units = excluded.amount_value_in_base_units,
  created_at = excluded.created_at,
  created_unix_ms = excluded.created_unix_ms,
  settled_at = excluded.settled_at,
  last_fetched_at = excluded.last_fetched_at,
  is_active = 1
`

	for _, rcd := range records {
		rawText := ptrStringValue(rcd.RawText)
		merchantNorm := normalizeTransactionMerchant(rawText, rcd.Description)
		if rcd.TransferAccountID != nil && strings.TrimSpace(*rcd.TransferAccountID) != "" {
			if internal, ok := normalizeInternalTransferMerchant(
				accountNames[rcd.AccountID],
				accountNames[*rcd.TransferAccountID],
				rcd.AmountValueInBaseUnits,
				rawText,
				rcd.Description,
			); ok {
				merchantNorm = internal
			}
		}

		var settled any
		if rcd.SettledAt != nil {
			settled = rcd.SettledAt.UTC().Format(time.RFC3339Nano)
		}

		if _, err = tx.ExecContext(
			ctx,
			upsert,
			rcd.ID, rcd.AccountID, ptrString(rcd.TransferAccountID), ptrString(rcd.CategoryID), ptrString(rcd.ParentCategoryID),
			rcd.Status, ptrString(rcd.RawText), rcd.Description, ptrString(rcd.Message), merchantNorm,
			rcd.AmountCurrencyCode, rcd.AmountValue, rcd.AmountValueInBaseUnits,
			rcd.CreatedAt.UTC().Format(time.RFC3339Nano), rcd.CreatedAt.UnixMilli(), settled, fetchedValue,
		); err != nil {
			return fmt.Errorf("upsert transaction %q: %w", rcd.ID, err)
		}

		if _, err = tx.ExecContext(ctx, "DELETE FROM transaction_tags WHERE transaction_id = ?", rcd.ID); err != nil {
			return fmt.Errorf("clear transaction tags %q: %w", rcd.ID, err)
		}
		for _, tagID := range rcd.TagIDs {
			if _, err = tx.ExecContext(
				ctx,
				`INSERT OR IGNORE INTO transaction_tags (transaction_id, tag_id) VALUES (?, ?)`,
				rcd.ID,
				tagID,
			); err != nil {
				return fmt.Errorf("insert transaction tag %q/%q: %w", rcd.ID, tagID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transactions upsert transaction: %w", err)
	}
	return nil
}

// ListRange returns active transactions matching f, newest first.
func (r *TransactionsRepo) ListRange(ctx context.Context, f RangeFilter) ([]TransactionRecord, error) {
	where := []string{"t.is_active = 1", "t.created_unix_ms >= ?", "t.created_unix_ms <= ?"}
	args := []any{f.Start.UnixMilli(), f.End.UnixMilli()}

	if f.AccountID != "" {
		where = append(where, "t.account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != "" {
		where = append(where, "(t.category_id = ? OR t.parent_category_id = ?)")
		args = append(args, f.CategoryID, f.CategoryID)
	}
	if f.TagID != "" {
		where = append(where, "EXISTS (SELECT 1 FROM transaction_tags tt WHERE tt.transaction_id = t.id AND tt.tag_id = ?)")
		args = append(args, f.TagID)
	}
	switch f.Sign {
	case SignIncome:
		where = append(where, "t.amount_value_in_base_units > 0")
	case SignExpense:
		where = append(where, "t.amount_value_in_base_units < 0")
	}

	q := `
SELECT t.id, t.account_id, t.transfer_account_id, t.category_id, t.parent_category_id,
       t.status, t.raw_text, t.description, t.message, t.merchant_norm,
       t.amount_currency_code, t.amount_value, t.amount_value_in_base_units,
       t.created_at, t.settled_at
FROM transactions t
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY t.created_unix_ms DESC, t.id ASC`
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions range: %w", err)
	}
	defer rows.Close()

	out := make([]TransactionRecord, 0, 64)
	for rows.Next() {
		var (
			rcd                               TransactionRecord
			transfer, category, parent        sql.NullString
			rawText, message, createdAt, sett sql.NullString
		)
		if err := rows.Scan(
			&rcd.ID, &rcd.AccountID, &transfer, &category, &parent,
			&rcd.Status, &rawText, &rcd.Description, &message, &rcd.MerchantNorm,
			&rcd.AmountCurrencyCode, &rcd.AmountValue, &rcd.AmountValueInBaseUnits,
			&createdAt, &sett,
		); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		rcd.TransferAccountID = nullStringPtr(transfer)
		rcd.CategoryID = nullStringPtr(category)
		rcd.ParentCategoryID = nullStringPtr(parent)
		rcd.RawText = nullStringPtr(rawText)
		rcd.Message = nullStringPtr(message)

		rcd.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %q: %w", rcd.ID, err)
		}
		if sett.Valid && sett.String != "" {
			settledAt, err := time.Parse(time.RFC3339Nano, sett.String)
			if err != nil {
				return nil, fmt.Errorf("parse settled_at for %q: %w", rcd.ID, err)
			}
			rcd.SettledAt = &settledAt
		}
		out = append(out, rcd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	if err := r.attachTags(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TransactionsRepo) attachTags(ctx context.Context, records []TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	index := make(map[string]int, len(records))
	placeholders := make([]string, len(records))
	args := make([]any, len(records))
	for i, rcd := range records {
		index[rcd.ID] = i
		placeholders[i] = "?"
		args[i] = rcd.ID
	}

	q := fmt.Sprintf(
		"SELECT transaction_id, tag_id FROM transaction_tags WHERE transaction_id IN (%s) ORDER BY tag_id",
		strings.Join(placeholders, ","),
	)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("query transaction tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txID, tagID string
		if err := rows.Scan(&txID, &tagID); err != nil {
			return fmt.Errorf("scan transaction tag: %w", err)
		}
		if i, ok := index[txID]; ok {
			records[i].TagIDs = append(records[i].TagIDs, tagID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate transaction tags: %w", err)
	}
	return nil
}

func ptrString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func ptrStringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func loadAccountDisplayNameByID(ctx context.Context, tx *sql.Tx) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, COALESCE(display_name, '') FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("query accounts for transaction merchant normalization: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, 64)
	for rows.Next() {
		var id string
		var displayName string
		if err := rows.Scan(&id, &displayName); err != nil {
			return nil, fmt.Errorf("scan accounts for transaction merchant normalization: %w", err)
		}
		names[id] = displayName
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts for transaction merchant normalization: %w", err)
	}
	return names, nil
}
