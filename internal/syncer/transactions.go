package syncer

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/timeline"
	"github.com/lachiem1/ledgerline/internal/upapi"
)

func mapTransactionRecord(res upapi.Resource) (storage.TransactionRecord, error) {
	if res.ID == "" {
		return storage.TransactionRecord{}, errors.New("transaction id is empty")
	}
	attrs := res.Attributes
	if attrs == nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q missing attributes", res.ID)
	}

	status, err := stringAttr(attrs, "status")
	if err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: %w", res.ID, err)
	}
	description, err := stringAttr(attrs, "description")
	if err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: %w", res.ID, err)
	}
	createdRaw, err := stringAttr(attrs, "createdAt")
	if err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: %w", res.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339, createdRaw)
	if err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: parse createdAt: %w", res.ID, err)
	}

	amount, err := optionalObject(attrs, "amount")
	if err != nil || amount == nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: missing amount", res.ID)
	}
	currency, err := stringAttr(amount, "currencyCode")
	if err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: %w", res.ID, err)
	}
	value, err := stringAttr(amount, "value")
	if err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: %w", res.ID, err)
	}
	baseUnits, err := int64Attr(amount, "valueInBaseUnits")
	if err != nil {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: %w", res.ID, err)
	}

	accountID := relationshipID(res.Relationships, "account")
	if accountID == "" {
		return storage.TransactionRecord{}, fmt.Errorf("transaction %q: missing relationships.account.data.id", res.ID)
	}

	rec := storage.TransactionRecord{
		ID:                     res.ID,
		AccountID:              accountID,
		TransferAccountID:      stringPtr(relationshipID(res.Relationships, "transferAccount")),
		CategoryID:             stringPtr(relationshipID(res.Relationships, "category")),
		ParentCategoryID:       stringPtr(relationshipID(res.Relationships, "parentCategory")),
		Status:                 status,
		Description:            description,
		AmountCurrencyCode:     currency,
		AmountValue:            value,
		AmountValueInBaseUnits: baseUnits,
		CreatedAt:              createdAt,
		TagIDs:                 relationshipIDs(res.Relationships, "tags"),
	}
	rec.RawText, _ = optionalString(attrs, "rawText")
	rec.Message, _ = optionalString(attrs, "message")
	if settled, _ := optionalString(attrs, "settledAt"); settled != nil {
		if at, err := time.Parse(time.RFC3339, *settled); err == nil {
			rec.SettledAt = &at
		}
	}
	return rec, nil
}

func recordToTransaction(rec storage.TransactionRecord) timeline.Transaction {
	amount, err := decimal.NewFromString(rec.AmountValue)
	if err != nil {
		amount = decimal.New(rec.AmountValueInBaseUnits, -2)
	}
	tx := timeline.Transaction{
		ID:           rec.ID,
		AccountID:    rec.AccountID,
		TagIDs:       rec.TagIDs,
		Status:       rec.Status,
		Description:  rec.Description,
		Merchant:     rec.MerchantNorm,
		Amount:       amount,
		CurrencyCode: rec.AmountCurrencyCode,
		CreatedAt:    rec.CreatedAt,
		SettledAt:    rec.SettledAt,
	}
	if rec.CategoryID != nil {
		tx.CategoryID = *rec.CategoryID
	}
	if rec.ParentCategoryID != nil {
		tx.ParentCategoryID = *rec.ParentCategoryID
	}
	if rec.Message != nil {
		tx.Message = *rec.Message
	}
	return tx
}
