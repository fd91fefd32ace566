package syncer

import (
	"context"
	"database/sql"
	"time"

	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/upapi"
)

type Service struct {
	engine *Engine
}

func NewService(engine *Engine) *Service {
	return &Service{engine: engine}
}

// NewDictionariesService keeps accounts and categories fresh under the
// dictionaries collection.
func NewDictionariesService(db *sql.DB, client *upapi.Client, cfg Config, onEvent func(Event)) (*Service, error) {
	syncState := storage.NewSyncStateRepo(db)
	dictionaries := newGroupSyncer(
		CollectionDictionaries,
		NewAccountsSyncer(client, storage.NewAccountsRepo(db), syncState, defaultAccountWorkers),
		NewCategoriesSyncer(client, storage.NewCategoriesRepo(db), syncState),
	)

	if cfg.StaleTTL <= 0 {
		cfg.StaleTTL = 5 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Minute
	}
	engine, err := New(cfg, []Syncer{dictionaries}, onEvent)
	if err != nil {
		return nil, err
	}
	return NewService(engine), nil
}

func (s *Service) EnterDictionaries(ctx context.Context) error {
	return s.engine.EnterView(ctx, CollectionDictionaries)
}

func (s *Service) RefreshDictionaries() error {
	return s.engine.ManualRefresh(CollectionDictionaries)
}

func (s *Service) LeaveView() {
	s.engine.LeaveView()
}
