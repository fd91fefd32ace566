package timeline

import (
	"context"
	"fmt"
	"time"
)

const (
	SortByDate      = "date"
	SortOrderDesc   = "desc"
	DefaultPageSize = 500
	defaultSpanDays = 5
)

// ListFilter is the read request issued for one window.
type ListFilter struct {
	Start      time.Time
	End        time.Time
	AccountID  string
	CategoryID string
	Type       TransactionType
	GroupID    string
	SortBy     string
	SortOrder  string
	PageSize   int
}

func (f ListFilter) Query() Query {
	return Query{
		AccountID:  f.AccountID,
		CategoryID: f.CategoryID,
		Type:       f.Type,
		GroupID:    f.GroupID,
	}
}

type Page struct {
	Items []Transaction
}

// Source performs the read for a window. The page is expected to be complete
// for the requested span.
type Source interface {
	ListTransactions(ctx context.Context, filter ListFilter) (Page, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, filter ListFilter) (Page, error)

func (f SourceFunc) ListTransactions(ctx context.Context, filter ListFilter) (Page, error) {
	return f(ctx, filter)
}

// FetchError reports a failed window read. The cache is left untouched.
type FetchError struct {
	Window Window
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s window: %v", e.Window, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
