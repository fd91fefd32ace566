package syncer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/timeline"
	"github.com/lachiem1/ledgerline/internal/upapi"
)

// TransactionLister is the part of the Up client a WindowSource reads from.
type TransactionLister interface {
	ListTransactions(ctx context.Context, opts upapi.TransactionListOptions) (*upapi.ListResponse, error)
	ListTransactionsByAccount(ctx context.Context, accountID string, opts upapi.TransactionListOptions) (*upapi.ListResponse, error)
}

type WindowSourceConfig struct {
	// StaleTTL is how long a synced window is served from the local store
	// without asking the API again.
	StaleTTL time.Duration
	Logger   *zerolog.Logger
	Now      func() time.Time
}

// WindowSource is a read-through timeline.Source: each window is pulled from
// the API into the local store, then read back from it.
type WindowSource struct {
	client    TransactionLister
	txRepo    *storage.TransactionsRepo
	syncState *storage.SyncStateRepo
	ttl       time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewWindowSource(db *sql.DB, client TransactionLister, cfg WindowSourceConfig) *WindowSource {
	if cfg.StaleTTL <= 0 {
		cfg.StaleTTL = 2 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "window_source").Logger()
	}
	return &WindowSource{
		client:    client,
		txRepo:    storage.NewTransactionsRepo(db),
		syncState: storage.NewSyncStateRepo(db),
		ttl:       cfg.StaleTTL,
		now:       cfg.Now,
		log:       log,
	}
}

func (s *WindowSource) ListTransactions(ctx context.Context, f timeline.ListFilter) (timeline.Page, error) {
	key := windowKey(f)

	fresh, err := s.syncState.IsFresh(ctx, key, s.now().UTC(), s.ttl)
	if err != nil {
		return timeline.Page{}, err
	}
	if fresh {
		s.log.Debug().Str("window", key).Msg("serving window from local store")
	} else if err := runSyncAttempt(ctx, s.syncState, key, func(runCtx context.Context) (time.Time, error) {
		return s.pull(runCtx, f)
	}); err != nil {
		return timeline.Page{}, fmt.Errorf("sync window: %w", err)
	}

	records, err := s.txRepo.ListRange(ctx, storage.RangeFilter{
		Start:      f.Start,
		End:        f.End,
		AccountID:  f.AccountID,
		CategoryID: f.CategoryID,
		TagID:      f.GroupID,
		Sign:       signFor(f.Type),
		Limit:      f.PageSize,
	})
	if err != nil {
		return timeline.Page{}, err
	}

	items := make([]timeline.Transaction, 0, len(records))
	for _, rec := range records {
		items = append(items, recordToTransaction(rec))
	}
	return timeline.Page{Items: items}, nil
}

// Invalidate forgets every window sync so the next read goes to the API.
func (s *WindowSource) Invalidate(ctx context.Context) error {
	return s.syncState.Reset(ctx, windowCollectionPrefix)
}

func (s *WindowSource) pull(ctx context.Context, f timeline.ListFilter) (time.Time, error) {
	opts := upapi.TransactionListOptions{
		Since:    f.Start,
		Until:    f.End.Add(time.Nanosecond),
		Category: f.CategoryID,
		Tag:      f.GroupID,
	}
	if f.Type == timeline.TypeAny {
		opts.Limit = f.PageSize
	}

	var (
		list *upapi.ListResponse
		err  error
	)
	if f.AccountID != "" {
		list, err = s.client.ListTransactionsByAccount(ctx, f.AccountID, opts)
	} else {
		list, err = s.client.ListTransactions(ctx, opts)
	}
	if err != nil {
		return time.Time{}, err
	}

	batch := make([]storage.TransactionRecord, 0, len(list.Data))
	for _, res := range list.Data {
		rec, err := mapTransactionRecord(res)
		if err != nil {
			return time.Time{}, err
		}
		batch = append(batch, rec)
	}

	fetchedAt := s.now().UTC()
	if err := s.txRepo.UpsertBatch(ctx, batch, fetchedAt); err != nil {
		return time.Time{}, err
	}
	s.log.Debug().
		Time("since", opts.Since).
		Time("until", opts.Until).
		Int("transactions", len(batch)).
		Msg("pulled window")
	return fetchedAt, nil
}

// windowKey scopes sync state to the remote query. The amount sign is
// filtered locally, so it is not part of the key.
func windowKey(f timeline.ListFilter) string {
	parts := []string{
		f.Start.UTC().Format(time.RFC3339),
		f.End.UTC().Format(time.RFC3339),
		"account=" + f.AccountID,
		"category=" + f.CategoryID,
		"group=" + f.GroupID,
	}
	return windowCollectionPrefix + strings.Join(parts, ";")
}

func signFor(t timeline.TransactionType) storage.Sign {
	switch t {
	case timeline.TypeIncome:
		return storage.SignIncome
	case timeline.TypeExpense:
		return storage.SignExpense
	default:
		return storage.SignAny
	}
}
