package upapi

import (
	"context"
	"net/url"
	"time"
)

// TransactionListOptions supports list filters in Up docs. Zero values are
// omitted from the query.
type TransactionListOptions struct {
	Status   string
	Since    time.Time
	Until    time.Time
	Category string
	Tag      string
	// PageSize is sent as page[size]. Defaults to 100.
	PageSize int
	// Limit stops pagination once this many transactions were collected.
	// Zero follows every page.
	Limit int
}

// ListTransactions calls GET /transactions and follows pagination. Up
// returns transactions newest first.
func (c *Client) ListTransactions(ctx context.Context, opts TransactionListOptions) (*ListResponse, error) {
	return c.listAll(ctx, "/transactions", transactionQuery(opts), opts.Limit)
}

// ListTransactionsByAccount calls GET /accounts/{accountId}/transactions and
// follows pagination.
func (c *Client) ListTransactionsByAccount(
	ctx context.Context,
	accountID string,
	opts TransactionListOptions,
) (*ListResponse, error) {
	return c.listAll(ctx, "/accounts/"+url.PathEscape(accountID)+"/transactions", transactionQuery(opts), opts.Limit)
}

func transactionQuery(opts TransactionListOptions) url.Values {
	query := pageSizeQueryWithSize(opts.PageSize)
	if opts.Status != "" {
		query.Set("filter[status]", opts.Status)
	}
	if !opts.Since.IsZero() {
		query.Set("filter[since]", opts.Since.Format(time.RFC3339))
	}
	if !opts.Until.IsZero() {
		query.Set("filter[until]", opts.Until.Format(time.RFC3339))
	}
	if opts.Category != "" {
		query.Set("filter[category]", opts.Category)
	}
	if opts.Tag != "" {
		query.Set("filter[tag]", opts.Tag)
	}
	return query
}
