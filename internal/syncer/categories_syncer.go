package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/upapi"
)

type CategoriesSyncer struct {
	client     *upapi.Client
	categories *storage.CategoriesRepo
	syncState  *storage.SyncStateRepo
}

func NewCategoriesSyncer(
	client *upapi.Client,
	categories *storage.CategoriesRepo,
	syncState *storage.SyncStateRepo,
) *CategoriesSyncer {
	return &CategoriesSyncer{client: client, categories: categories, syncState: syncState}
}

func (s *CategoriesSyncer) Collection() string {
	return CollectionCategories
}

func (s *CategoriesSyncer) HasCachedData(ctx context.Context) (bool, error) {
	list, err := s.categories.List(ctx)
	if err != nil {
		return false, err
	}
	return len(list) > 0, nil
}

func (s *CategoriesSyncer) LastSuccessAt(ctx context.Context) (time.Time, bool, error) {
	return lastSuccessAt(ctx, s.syncState, s.Collection())
}

func (s *CategoriesSyncer) Sync(ctx context.Context) error {
	return runSyncAttempt(ctx, s.syncState, s.Collection(), func(runCtx context.Context) (time.Time, error) {
		list, err := s.client.ListCategories(runCtx, upapi.CategoryListOptions{})
		if err != nil {
			return time.Time{}, err
		}

		categories := make([]storage.Category, 0, len(list.Data))
		for _, res := range list.Data {
			cat, err := mapCategory(res)
			if err != nil {
				return time.Time{}, err
			}
			categories = append(categories, cat)
		}

		fetchedAt := time.Now().UTC()
		if err := s.categories.ReplaceSnapshot(runCtx, categories, fetchedAt); err != nil {
			return time.Time{}, err
		}
		return fetchedAt, nil
	})
}

func mapCategory(res upapi.Resource) (storage.Category, error) {
	if res.ID == "" {
		return storage.Category{}, errors.New("category id is empty")
	}
	if res.Attributes == nil {
		return storage.Category{}, fmt.Errorf("category %q missing attributes", res.ID)
	}
	name, err := stringAttr(res.Attributes, "name")
	if err != nil {
		return storage.Category{}, fmt.Errorf("category %q: %w", res.ID, err)
	}
	return storage.Category{
		ID:       res.ID,
		Name:     name,
		ParentID: stringPtr(relationshipID(res.Relationships, "parent")),
	}, nil
}
