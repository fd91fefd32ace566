// Package demo generates a deterministic transaction history so the timeline
// can be explored without an Up account or a local database.
package demo

import (
	"context"
	"hash/fnv"
	"math/rand"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lachiem1/ledgerline/internal/timeline"
)

var namespace = uuid.MustParse("6f1c2b9e-3d4a-4c5b-9e8f-7a6b5c4d3e2f")

// UnknownCategoryID is used by a small share of generated transactions and is
// absent from Dictionaries.
const UnknownCategoryID = "mystery-box"

type merchant struct {
	name     string
	category string
	parent   string
	minCents int64
	maxCents int64
	tag      string
}

var merchants = []merchant{
	{name: "Woolworths", category: "groceries", parent: "good-life", minCents: 1500, maxCents: 14000},
	{name: "Coles", category: "groceries", parent: "good-life", minCents: 1200, maxCents: 11000},
	{name: "Seven Seeds", category: "restaurants-and-cafes", parent: "good-life", minCents: 450, maxCents: 1800, tag: "coffee"},
	{name: "Market Lane", category: "restaurants-and-cafes", parent: "good-life", minCents: 450, maxCents: 1600, tag: "coffee"},
	{name: "Myki Top Up", category: "public-transport", parent: "transport", minCents: 1000, maxCents: 5000},
	{name: "Shell", category: "fuel", parent: "transport", minCents: 4000, maxCents: 9000},
	{name: "Netflix", category: "tv-and-music", parent: "home", minCents: 1099, maxCents: 2299},
	{name: "Bunnings", category: "homeware-and-appliances", parent: "home", minCents: 800, maxCents: 25000},
	{name: "Qantas", category: "holidays-and-travel", parent: "good-life", minCents: 12000, maxCents: 60000, tag: "holiday"},
}

var (
	spendingID = accountID("Spending")
	savingsID  = accountID("Savings")
)

func accountID(name string) string {
	return uuid.NewSHA1(namespace, []byte("account:"+name)).String()
}

// Dictionaries returns the demo accounts and categories.
func Dictionaries() timeline.Dictionaries {
	accounts := []timeline.Account{
		{ID: spendingID, DisplayName: "Spending", AccountType: "TRANSACTIONAL", OwnershipType: "INDIVIDUAL"},
		{ID: savingsID, DisplayName: "Savings", AccountType: "SAVER", OwnershipType: "INDIVIDUAL"},
	}
	categories := []timeline.Category{
		{ID: "good-life", Name: "Good Life"},
		{ID: "transport", Name: "Transport"},
		{ID: "home", Name: "Home"},
		{ID: "groceries", Name: "Groceries", ParentID: "good-life"},
		{ID: "restaurants-and-cafes", Name: "Restaurants & Cafes", ParentID: "good-life"},
		{ID: "holidays-and-travel", Name: "Holidays & Travel", ParentID: "good-life"},
		{ID: "public-transport", Name: "Public Transport", ParentID: "transport"},
		{ID: "fuel", Name: "Fuel", ParentID: "transport"},
		{ID: "tv-and-music", Name: "TV & Music", ParentID: "home"},
		{ID: "homeware-and-appliances", Name: "Homeware & Appliances", ParentID: "home"},
	}
	return timeline.NewDictionaries(accounts, categories)
}

type Config struct {
	Location *time.Location
	// Now bounds the history: no transaction is generated after it.
	Now func() time.Time
	// Latency delays every read so loading states are visible.
	Latency time.Duration
}

// Source is a timeline.Source over generated history. The same day always
// yields the same transactions.
type Source struct {
	loc     *time.Location
	now     func() time.Time
	latency time.Duration
}

func NewSource(cfg Config) *Source {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Source{loc: cfg.Location, now: cfg.Now, latency: cfg.Latency}
}

func (s *Source) ListTransactions(ctx context.Context, f timeline.ListFilter) (timeline.Page, error) {
	if s.latency > 0 {
		select {
		case <-ctx.Done():
			return timeline.Page{}, ctx.Err()
		case <-time.After(s.latency):
		}
	}

	now := s.now()
	var items []timeline.Transaction
	for _, day := range timeline.DayRange(f.Start, f.End, s.loc) {
		for _, tx := range s.Day(day) {
			if tx.CreatedAt.Before(f.Start) || tx.CreatedAt.After(f.End) || tx.CreatedAt.After(now) {
				continue
			}
			if matches(tx, f) {
				items = append(items, tx)
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	if f.PageSize > 0 && len(items) > f.PageSize {
		items = items[:f.PageSize]
	}
	return timeline.Page{Items: items}, nil
}

// Day returns the generated transactions of one calendar day, unfiltered.
func (s *Source) Day(day timeline.Day) []timeline.Transaction {
	h := fnv.New64a()
	_, _ = h.Write([]byte(day))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	start := day.Start(s.loc)
	count := rng.Intn(5)
	out := make([]timeline.Transaction, 0, count+1)

	if start.Day() == 1 || start.Day() == 15 {
		out = append(out, timeline.Transaction{
			ID:           transactionID(day, "salary"),
			AccountID:    spendingID,
			Status:       "SETTLED",
			Description:  "Salary",
			Merchant:     "ACME PTY LTD",
			Message:      "Pay",
			Amount:       decimal.New(310000, -2),
			CurrencyCode: "AUD",
			CreatedAt:    start.Add(9 * time.Hour),
		})
	}

	for i := 0; i < count; i++ {
		m := merchants[rng.Intn(len(merchants))]
		cents := m.minCents + rng.Int63n(m.maxCents-m.minCents+1)
		tx := timeline.Transaction{
			ID:               transactionID(day, strings.Repeat("#", i+1)),
			AccountID:        spendingID,
			CategoryID:       m.category,
			ParentCategoryID: m.parent,
			Status:           "SETTLED",
			Description:      m.name,
			Merchant:         m.name,
			Amount:           decimal.New(-cents, -2),
			CurrencyCode:     "AUD",
			CreatedAt:        start.Add(time.Duration(7+rng.Intn(14))*time.Hour + time.Duration(rng.Intn(60))*time.Minute),
		}
		if m.tag != "" {
			tx.TagIDs = []string{m.tag}
		}
		if rng.Intn(20) == 0 {
			tx.CategoryID = UnknownCategoryID
			tx.ParentCategoryID = ""
		}
		if rng.Intn(10) == 0 {
			tx.AccountID = savingsID
		}
		out = append(out, tx)
	}
	return out
}

func transactionID(day timeline.Day, suffix string) string {
	return uuid.NewSHA1(namespace, []byte("transaction:"+string(day)+":"+suffix)).String()
}

func matches(tx timeline.Transaction, f timeline.ListFilter) bool {
	if f.AccountID != "" && tx.AccountID != f.AccountID {
		return false
	}
	if f.CategoryID != "" && tx.CategoryID != f.CategoryID && tx.ParentCategoryID != f.CategoryID {
		return false
	}
	switch f.Type {
	case timeline.TypeIncome:
		if !tx.Amount.IsPositive() {
			return false
		}
	case timeline.TypeExpense:
		if !tx.Amount.IsNegative() {
			return false
		}
	}
	if f.GroupID != "" && !slices.Contains(tx.TagIDs, f.GroupID) {
		return false
	}
	return true
}
