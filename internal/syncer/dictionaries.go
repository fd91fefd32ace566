package syncer

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/timeline"
)

// LoadDictionaries reads the local accounts and categories snapshots into
// timeline lookup tables.
func LoadDictionaries(ctx context.Context, db *sql.DB) (timeline.Dictionaries, error) {
	var (
		accounts   []storage.Account
		categories []storage.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = storage.NewAccountsRepo(db).List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = storage.NewCategoriesRepo(db).List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return timeline.Dictionaries{}, fmt.Errorf("load dictionaries: %w", err)
	}

	outAccounts := make([]timeline.Account, 0, len(accounts))
	for _, a := range accounts {
		outAccounts = append(outAccounts, timeline.Account{
			ID:            a.ID,
			DisplayName:   a.DisplayName,
			AccountType:   a.AccountType,
			OwnershipType: a.OwnershipType,
		})
	}
	outCategories := make([]timeline.Category, 0, len(categories))
	for _, c := range categories {
		cat := timeline.Category{ID: c.ID, Name: c.Name}
		if c.ParentID != nil {
			cat.ParentID = *c.ParentID
		}
		outCategories = append(outCategories, cat)
	}
	return timeline.NewDictionaries(outAccounts, outCategories), nil
}
