package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/upapi"
)

const defaultAccountWorkers = 4

type AccountsSyncer struct {
	client    *upapi.Client
	accounts  *storage.AccountsRepo
	syncState *storage.SyncStateRepo
	workers   int
}

func NewAccountsSyncer(
	client *upapi.Client,
	accounts *storage.AccountsRepo,
	syncState *storage.SyncStateRepo,
	workers int,
) *AccountsSyncer {
	if workers <= 0 {
		workers = defaultAccountWorkers
	}
	return &AccountsSyncer{
		client:    client,
		accounts:  accounts,
		syncState: syncState,
		workers:   workers,
	}
}

func (s *AccountsSyncer) Collection() string {
	return CollectionAccounts
}

func (s *AccountsSyncer) HasCachedData(ctx context.Context) (bool, error) {
	return s.accounts.HasActiveAccounts(ctx)
}

func (s *AccountsSyncer) LastSuccessAt(ctx context.Context) (time.Time, bool, error) {
	return lastSuccessAt(ctx, s.syncState, s.Collection())
}

func (s *AccountsSyncer) Sync(ctx context.Context) error {
	return runSyncAttempt(ctx, s.syncState, s.Collection(), func(runCtx context.Context) (time.Time, error) {
		list, err := s.client.ListAccounts(runCtx)
		if err != nil {
			return time.Time{}, err
		}

		ids := make([]string, 0, len(list.Data))
		for _, res := range list.Data {
			if res.ID == "" {
				continue
			}
			ids = append(ids, res.ID)
		}

		accounts, err := s.fetchAllAccounts(runCtx, ids)
		if err != nil {
			return time.Time{}, err
		}
		for i := range accounts {
			accounts[i].DisplayOrder = i + 1
		}

		fetchedAt := time.Now().UTC()
		if err := s.accounts.ReplaceSnapshot(runCtx, accounts, fetchedAt); err != nil {
			return time.Time{}, err
		}
		return fetchedAt, nil
	})
}

func (s *AccountsSyncer) fetchAllAccounts(ctx context.Context, ids []string) ([]storage.Account, error) {
	return fetchAllByID(ctx, ids, s.workers, s.fetchAccountByID)
}

func (s *AccountsSyncer) fetchAccountByID(ctx context.Context, id string) (storage.Account, error) {
	resp, err := s.client.GetAccount(ctx, id)
	if err != nil {
		return storage.Account{}, fmt.Errorf("get account %q: %w", id, err)
	}
	return mapAccount(resp.Data)
}

func mapAccount(res upapi.Resource) (storage.Account, error) {
	if res.ID == "" {
		return storage.Account{}, errors.New("account id is empty")
	}
	attrs := res.Attributes
	if attrs == nil {
		return storage.Account{}, fmt.Errorf("account %q missing attributes", res.ID)
	}

	displayName, err := stringAttr(attrs, "displayName")
	if err != nil {
		return storage.Account{}, fmt.Errorf("account %q: %w", res.ID, err)
	}
	accountType, err := stringAttr(attrs, "accountType")
	if err != nil {
		return storage.Account{}, fmt.Errorf("account %q: %w", res.ID, err)
	}
	ownershipType, err := stringAttr(attrs, "ownershipType")
	if err != nil {
		return storage.Account{}, fmt.Errorf("account %q: %w", res.ID, err)
	}
	createdAt, err := stringAttr(attrs, "createdAt")
	if err != nil {
		return storage.Account{}, fmt.Errorf("account %q: %w", res.ID, err)
	}

	balance, err := optionalObject(attrs, "balance")
	if err != nil {
		return storage.Account{}, fmt.Errorf("account %q: %w", res.ID, err)
	}
	if balance == nil {
		return storage.Account{}, fmt.Errorf("account %q: missing balance", res.ID)
	}
	currencyCode, err := stringAttr(balance, "currencyCode")
	if err != nil {
		return storage.Account{}, fmt.Errorf("account %q: %w", res.ID, err)
	}
	balanceValue, err := stringAttr(balance, "value")
	if err != nil {
		return storage.Account{}, fmt.Errorf("account %q: %w", res.ID, err)
	}
	baseUnits, err := int64Attr(balance, "valueInBaseUnits")
	if err != nil {
		return storage.Account{}, fmt.Errorf("account %q: %w", res.ID, err)
	}

	return storage.Account{
		ID:                      res.ID,
		DisplayName:             displayName,
		AccountType:             accountType,
		OwnershipType:           ownershipType,
		BalanceCurrencyCode:     currencyCode,
		BalanceValue:            balanceValue,
		BalanceValueInBaseUnits: baseUnits,
		CreatedAt:               createdAt,
	}, nil
}
