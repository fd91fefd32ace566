package timeline

import (
	"sort"
	"time"
)

// Bucket holds the transactions of one calendar day.
type Bucket struct {
	Day          Day
	Transactions []Enriched
}

// GroupByDay buckets txs by their own created-at day in loc. The result has
// exactly one bucket per entry in days, newest day first, even when a day has
// no transactions. Transactions falling outside days are dropped; input order
// is kept within a bucket.
func GroupByDay(txs []Enriched, days []Day, loc *time.Location) []Bucket {
	byDay := make(map[Day][]Enriched, len(days))
	for _, d := range days {
		if _, ok := byDay[d]; !ok {
			byDay[d] = []Enriched{}
		}
	}

	for _, tx := range txs {
		d := DayOf(tx.Transaction.CreatedAt, loc)
		list, ok := byDay[d]
		if !ok {
			continue
		}
		byDay[d] = append(list, tx)
	}

	out := make([]Bucket, 0, len(byDay))
	for d, list := range byDay {
		out = append(out, Bucket{Day: d, Transactions: list})
	}
	sortBucketsDesc(out)
	return out
}

func sortBucketsDesc(buckets []Bucket) {
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day > buckets[j].Day
	})
}
