package syncer

const (
	CollectionAccounts     = "accounts"
	CollectionCategories   = "categories"
	CollectionDictionaries = "dictionaries"

	// windowCollectionPrefix scopes the sync state of each fetched window.
	windowCollectionPrefix = "window:"
)
