package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enrichedAt(id string, at time.Time) Enriched {
	return Enriched{Transaction: Transaction{ID: id, CreatedAt: at}}
}

func bucketDays(buckets []Bucket) []Day {
	out := make([]Day, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.Day)
	}
	return out
}

func bucketIDs(b Bucket) []string {
	out := make([]string, 0, len(b.Transactions))
	for _, e := range b.Transactions {
		out = append(out, e.Transaction.ID)
	}
	return out
}

func TestGroupByDayCoversExactlyExpectedDays(t *testing.T) {
	loc := time.UTC
	days := []Day{"2024-04-05", "2024-04-06", "2024-04-07", "2024-04-08", "2024-04-09"}
	txs := []Enriched{
		enrichedAt("a", time.Date(2024, 4, 9, 10, 0, 0, 0, loc)),
		enrichedAt("b", time.Date(2024, 4, 6, 10, 0, 0, 0, loc)),
	}

	buckets := GroupByDay(txs, days, loc)

	assert.Equal(t, []Day{"2024-04-09", "2024-04-08", "2024-04-07", "2024-04-06", "2024-04-05"}, bucketDays(buckets))
	for _, b := range buckets {
		assert.NotNil(t, b.Transactions, "bucket %s should be empty, not nil", b.Day)
	}
}

func TestGroupByDayWithNoTransactions(t *testing.T) {
	days := []Day{"2024-04-08", "2024-04-09"}

	buckets := GroupByDay(nil, days, time.UTC)

	require.Len(t, buckets, 2)
	assert.Empty(t, buckets[0].Transactions)
	assert.Empty(t, buckets[1].Transactions)
}

func TestGroupByDaySplitsAtMidnight(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	days := []Day{"2024-04-05", "2024-04-06"}
	txs := []Enriched{
		enrichedAt("late", time.Date(2024, 4, 5, 23, 59, 59, 0, loc)),
		enrichedAt("early", time.Date(2024, 4, 6, 0, 0, 1, 0, loc)),
	}

	buckets := GroupByDay(txs, days, loc)

	require.Len(t, buckets, 2)
	assert.Equal(t, Day("2024-04-06"), buckets[0].Day)
	assert.Equal(t, []string{"early"}, bucketIDs(buckets[0]))
	assert.Equal(t, Day("2024-04-05"), buckets[1].Day)
	assert.Equal(t, []string{"late"}, bucketIDs(buckets[1]))
}

func TestGroupByDayDropsOutOfWindowTransactions(t *testing.T) {
	loc := time.UTC
	days := []Day{"2024-04-08", "2024-04-09"}
	txs := []Enriched{
		enrichedAt("in", time.Date(2024, 4, 8, 9, 0, 0, 0, loc)),
		enrichedAt("future", time.Date(2024, 4, 10, 0, 0, 0, 0, loc)),
		enrichedAt("past", time.Date(2024, 4, 7, 23, 59, 59, 0, loc)),
	}

	buckets := GroupByDay(txs, days, loc)

	total := 0
	for _, b := range buckets {
		total += len(b.Transactions)
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, []Day{"2024-04-09", "2024-04-08"}, bucketDays(buckets))
}

func TestGroupByDayPreservesInputOrderWithinDay(t *testing.T) {
	loc := time.UTC
	days := []Day{"2024-04-09"}
	txs := []Enriched{
		enrichedAt("third", time.Date(2024, 4, 9, 8, 0, 0, 0, loc)),
		enrichedAt("first", time.Date(2024, 4, 9, 18, 0, 0, 0, loc)),
		enrichedAt("second", time.Date(2024, 4, 9, 12, 0, 0, 0, loc)),
	}

	buckets := GroupByDay(txs, days, loc)

	require.Len(t, buckets, 1)
	assert.Equal(t, []string{"third", "first", "second"}, bucketIDs(buckets[0]))
}

func TestGroupByDayUsesTransactionDateInReferenceZone(t *testing.T) {
	loc := time.FixedZone("AEST", 10*60*60)
	days := []Day{"2024-04-08", "2024-04-09"}
	// 2024-04-08T20:00Z is the morning of 2024-04-09 in AEST.
	txs := []Enriched{enrichedAt("x", time.Date(2024, 4, 8, 20, 0, 0, 0, time.UTC))}

	buckets := GroupByDay(txs, days, loc)

	require.Len(t, buckets, 2)
	assert.Equal(t, []string{"x"}, bucketIDs(buckets[0]))
	assert.Empty(t, buckets[1].Transactions)
}
