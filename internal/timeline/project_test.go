package timeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDictionaries() Dictionaries {
	return NewDictionaries(
		[]Account{{ID: "acc-1", DisplayName: "Spending"}, {ID: "acc-2", DisplayName: "Savings"}},
		[]Category{{ID: "groceries", Name: "Groceries", ParentID: "good-life"}},
	)
}

func TestProjectResolvesJoins(t *testing.T) {
	dicts := testDictionaries()
	tx := Transaction{ID: "tx-1", AccountID: "acc-2", CategoryID: "groceries", Amount: decimal.RequireFromString("-12.50")}

	e := Project(tx, dicts)

	require.NotNil(t, e.Account)
	require.NotNil(t, e.Category)
	assert.Equal(t, "Savings", e.Account.DisplayName)
	assert.Equal(t, "Groceries", e.Category.Name)
	assert.Same(t, dicts.Accounts["acc-2"], e.Account)
	assert.Equal(t, tx.ID, e.Transaction.ID)
}

func TestProjectDegradesDanglingReferencesToNil(t *testing.T) {
	dicts := testDictionaries()
	tx := Transaction{ID: "tx-1", AccountID: "missing", CategoryID: "also-missing"}

	e := Project(tx, dicts)

	assert.Nil(t, e.Account)
	assert.Nil(t, e.Category)
	assert.Equal(t, "tx-1", e.Transaction.ID)
}

func TestProjectWithEmptyDictionaries(t *testing.T) {
	e := Project(Transaction{ID: "tx-1", AccountID: "acc-1"}, Dictionaries{})

	assert.Nil(t, e.Account)
	assert.Nil(t, e.Category)
}

func TestProjectAllCountsDanglingWithoutDropping(t *testing.T) {
	dicts := testDictionaries()
	txs := []Transaction{
		{ID: "ok", AccountID: "acc-1", CategoryID: "groceries"},
		{ID: "no-account", AccountID: "gone", CategoryID: "groceries"},
		{ID: "uncategorised", AccountID: "acc-1"},
	}

	out, dangling := ProjectAll(txs, dicts)

	require.Len(t, out, 3)
	assert.Equal(t, 1, dangling)
	assert.Nil(t, out[1].Account)
	assert.NotNil(t, out[1].Category)
	assert.Nil(t, out[2].Category)
}
