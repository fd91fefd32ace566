package timeline

import "sort"

// Cache is the merged, day-keyed timeline ordered newest day first.
// Day keys are unique: merging a bucket for a known day replaces it.
type Cache struct {
	buckets map[Day][]Enriched
	days    []Day
}

func NewCache() *Cache {
	return &Cache{buckets: make(map[Day][]Enriched)}
}

// Replace discards the current contents and stores buckets.
func (c *Cache) Replace(buckets []Bucket) {
	c.buckets = make(map[Day][]Enriched, len(buckets))
	c.days = c.days[:0]
	c.Merge(buckets)
}

// Merge overwrites each bucket's day with the new contents and keeps the
// day order descending. Merging the same buckets twice is a no-op.
func (c *Cache) Merge(buckets []Bucket) {
	added := false
	for _, b := range buckets {
		if _, ok := c.buckets[b.Day]; !ok {
			c.days = append(c.days, b.Day)
			added = true
		}
		list := make([]Enriched, len(b.Transactions))
		copy(list, b.Transactions)
		c.buckets[b.Day] = list
	}
	if added {
		sort.Slice(c.days, func(i, j int) bool { return c.days[i] > c.days[j] })
	}
}

func (c *Cache) Has(d Day) bool {
	_, ok := c.buckets[d]
	return ok
}

func (c *Cache) Bucket(d Day) (Bucket, bool) {
	list, ok := c.buckets[d]
	if !ok {
		return Bucket{}, false
	}
	return Bucket{Day: d, Transactions: list}, true
}

// Buckets returns the cache contents, newest day first.
func (c *Cache) Buckets() []Bucket {
	out := make([]Bucket, 0, len(c.days))
	for _, d := range c.days {
		out = append(out, Bucket{Day: d, Transactions: c.buckets[d]})
	}
	return out
}

func (c *Cache) Days() []Day {
	out := make([]Day, len(c.days))
	copy(out, c.days)
	return out
}

func (c *Cache) TransactionCount() int {
	n := 0
	for _, list := range c.buckets {
		n += len(list)
	}
	return n
}
