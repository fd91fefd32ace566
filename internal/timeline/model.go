package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a raw transaction as returned by a Source.
type Transaction struct {
	ID               string
	AccountID        string
	CategoryID       string
	ParentCategoryID string
	TagIDs           []string
	Status           string
	Description      string
	Merchant         string
	Message          string
	Amount           decimal.Decimal
	CurrencyCode     string
	CreatedAt        time.Time
	SettledAt        *time.Time
}

// DisplayText returns the merchant when known, falling back to the description.
func (t Transaction) DisplayText() string {
	if s := strings.TrimSpace(t.Merchant); s != "" {
		return s
	}
	return strings.TrimSpace(t.Description)
}

type Account struct {
	ID            string
	DisplayName   string
	AccountType   string
	OwnershipType string
}

type Category struct {
	ID       string
	Name     string
	ParentID string
}

// Dictionaries holds the account and category lookup tables used to enrich
// transactions. The timeline only reads them; callers build a new value when
// the underlying lists change.
type Dictionaries struct {
	Accounts   map[string]*Account
	Categories map[string]*Category
}

// NewDictionaries indexes accounts and categories by id.
func NewDictionaries(accounts []Account, categories []Category) Dictionaries {
	d := Dictionaries{
		Accounts:   make(map[string]*Account, len(accounts)),
		Categories: make(map[string]*Category, len(categories)),
	}
	for i := range accounts {
		d.Accounts[accounts[i].ID] = &accounts[i]
	}
	for i := range categories {
		d.Categories[categories[i].ID] = &categories[i]
	}
	return d
}

func (d Dictionaries) Account(id string) *Account {
	if id == "" || d.Accounts == nil {
		return nil
	}
	return d.Accounts[id]
}

func (d Dictionaries) Category(id string) *Category {
	if id == "" || d.Categories == nil {
		return nil
	}
	return d.Categories[id]
}

// Enriched is a transaction joined against the dictionaries. Account and
// Category are nil when the id is empty or not present in the lookup table.
type Enriched struct {
	Transaction Transaction
	Account     *Account
	Category    *Category
}

type TransactionType string

const (
	TypeAny     TransactionType = ""
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeAny, "any", "all":
		return TypeAny, nil
	case TypeIncome, "in", "+ve":
		return TypeIncome, nil
	case TypeExpense, "out", "spend", "-ve":
		return TypeExpense, nil
	default:
		return TypeAny, fmt.Errorf("unknown transaction type %q", s)
	}
}

// Query identifies one timeline: a distinct query gets its own cache.
type Query struct {
	AccountID  string
	CategoryID string
	Type       TransactionType
	GroupID    string
}

func (q Query) IsZero() bool {
	return q == Query{}
}

// Key is a stable string form of the query, usable as a storage scope.
func (q Query) Key() string {
	return fmt.Sprintf("account=%s;category=%s;type=%s;group=%s", q.AccountID, q.CategoryID, q.Type, q.GroupID)
}

func (q Query) String() string {
	parts := make([]string, 0, 4)
	if q.AccountID != "" {
		parts = append(parts, "account="+q.AccountID)
	}
	if q.CategoryID != "" {
		parts = append(parts, "category="+q.CategoryID)
	}
	if q.Type != TypeAny {
		parts = append(parts, "type="+string(q.Type))
	}
	if q.GroupID != "" {
		parts = append(parts, "group="+q.GroupID)
	}
	if len(parts) == 0 {
		return "all transactions"
	}
	return strings.Join(parts, " ")
}
