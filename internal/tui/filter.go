package tui

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lachiem1/ledgerline/internal/storage"
	"github.com/lachiem1/ledgerline/internal/timeline"
)

type prefsLoadedMsg struct {
	query timeline.Query
	err   error
}

type prefsSavedMsg struct {
	err error
}

// parseFilterArgs reads "key=value" pairs into a query. "clear" resets it.
// Account and category values may be ids or display names.
func parseFilterArgs(args []string, current timeline.Query, dicts timeline.Dictionaries) (timeline.Query, error) {
	if len(args) == 0 {
		return current, fmt.Errorf("usage: /filter account=<id> category=<id> type=income|expense group=<tag> | /filter clear")
	}
	if len(args) == 1 && strings.EqualFold(args[0], "clear") {
		return timeline.Query{}, nil
	}

	q := current
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return current, fmt.Errorf("filter %q: expected key=value", arg)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "account":
			q.AccountID = resolveAccountID(value, dicts)
		case "category":
			q.CategoryID = resolveCategoryID(value, dicts)
		case "type":
			t, err := timeline.ParseTransactionType(value)
			if err != nil {
				return current, err
			}
			q.Type = t
		case "group", "tag":
			q.GroupID = value
		default:
			return current, fmt.Errorf("unknown filter %q", name)
		}
	}
	return q, nil
}

func resolveAccountID(value string, dicts timeline.Dictionaries) string {
	if value == "" || dicts.Account(value) != nil {
		return value
	}
	for id, acc := range dicts.Accounts {
		if strings.EqualFold(acc.DisplayName, value) {
			return id
		}
	}
	return value
}

func resolveCategoryID(value string, dicts timeline.Dictionaries) string {
	if value == "" || dicts.Category(value) != nil {
		return value
	}
	for id, cat := range dicts.Categories {
		if strings.EqualFold(cat.Name, value) {
			return id
		}
	}
	return value
}

// describeQuery renders ids as names where the dictionaries know them.
func describeQuery(q timeline.Query, dicts timeline.Dictionaries) string {
	if q.IsZero() {
		return "all transactions"
	}
	parts := make([]string, 0, 4)
	if q.AccountID != "" {
		name := q.AccountID
		if acc := dicts.Account(q.AccountID); acc != nil {
			name = acc.DisplayName
		}
		parts = append(parts, "account: "+name)
	}
	if q.CategoryID != "" {
		name := q.CategoryID
		if cat := dicts.Category(q.CategoryID); cat != nil {
			name = cat.Name
		}
		parts = append(parts, "category: "+name)
	}
	if q.Type != timeline.TypeAny {
		parts = append(parts, "type: "+string(q.Type))
	}
	if q.GroupID != "" {
		parts = append(parts, "group: "+q.GroupID)
	}
	return strings.Join(parts, ", ")
}

func loadPrefsCmd(db *sql.DB) tea.Cmd {
	return func() tea.Msg {
		prefs, err := storage.NewAppConfigRepo(db).LoadQueryPrefs(context.Background())
		if err != nil {
			return prefsLoadedMsg{err: err}
		}
		return prefsLoadedMsg{query: timeline.Query{
			AccountID:  prefs.AccountID,
			CategoryID: prefs.CategoryID,
			Type:       timeline.TransactionType(prefs.Type),
			GroupID:    prefs.GroupID,
		}}
	}
}

func savePrefsCmd(db *sql.DB, q timeline.Query) tea.Cmd {
	return func() tea.Msg {
		err := storage.NewAppConfigRepo(db).SaveQueryPrefs(context.Background(), storage.QueryPrefs{
			AccountID:  q.AccountID,
			CategoryID: q.CategoryID,
			Type:       string(q.Type),
			GroupID:    q.GroupID,
		})
		return prefsSavedMsg{err: err}
	}
}
