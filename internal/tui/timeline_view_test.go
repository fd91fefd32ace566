package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lachiem1/ledgerline/internal/timeline"
)

func TestRenderBucketsRegionsCoverHeaderRowsAndSeparator(t *testing.T) {
	at := time.Date(2024, 4, 15, 9, 30, 0, 0, time.UTC)
	buckets := []timeline.Bucket{
		{
			Day: "2024-04-15",
			Transactions: []timeline.Enriched{
				{Transaction: timeline.Transaction{ID: "a", Merchant: "Coles", Amount: decimal.RequireFromString("-12.50"), CreatedAt: at}},
				{Transaction: timeline.Transaction{ID: "b", Description: "Salary", Amount: decimal.RequireFromString("3100"), CreatedAt: at}},
			},
		},
		{Day: "2024-04-14"},
	}

	content, regions := renderBuckets(buckets, 100, time.UTC)

	if len(regions) != 2 {
		t.Fatalf("len(regions) = %d, want 2", len(regions))
	}
	want := []timeline.Region{
		{Day: "2024-04-15", Top: 0, Height: 4},
		{Day: "2024-04-14", Top: 4, Height: 3},
	}
	for i := range want {
		if regions[i] != want[i] {
			t.Fatalf("regions[%d] = %+v, want %+v", i, regions[i], want[i])
		}
	}

	lines := strings.Split(content, "\n")
	if len(lines) != 7 {
		t.Fatalf("content has %d lines, want 7", len(lines))
	}
	if !strings.Contains(lines[0], "Mon 15 Apr 2024") {
		t.Fatalf("header = %q, want day label", lines[0])
	}
	if !strings.Contains(lines[1], "Coles") || !strings.Contains(lines[2], "Salary") {
		t.Fatalf("rows = %q / %q, want merchant then description fallback", lines[1], lines[2])
	}
	if !strings.Contains(lines[5], "no transactions") {
		t.Fatalf("empty day row = %q, want placeholder", lines[5])
	}
}

func TestRenderTransactionRowCategoryLabels(t *testing.T) {
	cat := &timeline.Category{ID: "groceries", Name: "Groceries"}
	base := timeline.Transaction{Merchant: "Coles", Amount: decimal.RequireFromString("-4"), CreatedAt: time.Date(2024, 4, 15, 8, 0, 0, 0, time.UTC)}

	tests := []struct {
		name string
		e    timeline.Enriched
		want string
	}{
		{name: "known", e: timeline.Enriched{Transaction: withCategory(base, "groceries"), Category: cat}, want: "Groceries"},
		{name: "dangling", e: timeline.Enriched{Transaction: withCategory(base, "mystery-box")}, want: "unknown category"},
		{name: "none", e: timeline.Enriched{Transaction: base}, want: "uncategorised"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := renderTransactionRow(tt.e, 100, time.UTC)
			if !strings.Contains(row, tt.want) {
				t.Fatalf("row = %q, want it to contain %q", row, tt.want)
			}
		})
	}
}

func withCategory(tx timeline.Transaction, id string) timeline.Transaction {
	tx.CategoryID = id
	return tx
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in       string
		currency string
		want     string
	}{
		{in: "-12.5", currency: "AUD", want: "-$12.50"},
		{in: "3100", currency: "AUD", want: "+$3100.00"},
		{in: "0", want: "$0.00"},
		{in: "-1", currency: "USD", want: "-$1.00 USD"},
	}
	for _, tt := range tests {
		got := formatAmount(decimal.RequireFromString(tt.in), tt.currency)
		if got != tt.want {
			t.Fatalf("formatAmount(%s, %q) = %q, want %q", tt.in, tt.currency, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Woolworths Metro", 8); got != "Woolwor…" {
		t.Fatalf("truncate() = %q, want %q", got, "Woolwor…")
	}
	if got := truncate("Coles", 8); got != "Coles" {
		t.Fatalf("truncate() = %q, want %q", got, "Coles")
	}
}

func TestRibbonDaysAround(t *testing.T) {
	days := ribbonDaysAround("2024-04-01")
	if len(days) != ribbonDays {
		t.Fatalf("len(days) = %d, want %d", len(days), ribbonDays)
	}
	if days[0] != "2024-03-29" || days[3] != "2024-04-01" || days[6] != "2024-04-04" {
		t.Fatalf("days = %v, want 2024-03-29..2024-04-04 centred on 2024-04-01", days)
	}
}

func TestRenderRibbonShowsFocusMonth(t *testing.T) {
	if got := renderRibbon("", 80); got != "" {
		t.Fatalf("renderRibbon(zero) = %q, want empty", got)
	}
	got := renderRibbon("2024-03-01", 80)
	if !strings.Contains(got, "March 2024") || !strings.Contains(got, "Fri 01") {
		t.Fatalf("renderRibbon() = %q, want month and focus label", got)
	}
}

func TestComposeBlockWord(t *testing.T) {
	rows, segments := composeBlockWord("LED")
	if len(rows) != 6 {
		t.Fatalf("len(rows) = %d, want 6", len(rows))
	}
	if len(segments) != 3 {
		t.Fatalf("len(segments) = %d, want 3", len(segments))
	}
	for i := 1; i < len(segments); i++ {
		if segments[i][0] != segments[i-1][1]+1 {
			t.Fatalf("segments = %v, want contiguous columns", segments)
		}
	}
	width := len([]rune(rows[0]))
	for i, row := range rows {
		if len([]rune(row)) != width {
			t.Fatalf("row %d width = %d, want %d", i, len([]rune(row)), width)
		}
	}
}
