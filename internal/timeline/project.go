package timeline

// Project joins one transaction against the dictionaries. A dangling account
// or category reference degrades to a nil join.
func Project(tx Transaction, dicts Dictionaries) Enriched {
	return Enriched{
		Transaction: tx,
		Account:     dicts.Account(tx.AccountID),
		Category:    dicts.Category(tx.CategoryID),
	}
}

// ProjectAll projects every transaction and reports how many carried an id
// that was missing from the dictionaries.
func ProjectAll(txs []Transaction, dicts Dictionaries) ([]Enriched, int) {
	out := make([]Enriched, 0, len(txs))
	dangling := 0
	for _, tx := range txs {
		e := Project(tx, dicts)
		if tx.AccountID != "" && e.Account == nil {
			dangling++
		}
		if tx.CategoryID != "" && e.Category == nil {
			dangling++
		}
		out = append(out, e)
	}
	return out, dangling
}
