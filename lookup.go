package doxindex

import "context"

// LookupService answers prefix lookups against stored search tables.
type LookupService interface {
	// Lookup returns the project's entries whose key matches query, with the
	// same matching rules as Index.Lookup, in table order.
	// A limit <= 0 returns every match.
	Lookup(ctx context.Context, projectID, query string, limit int) ([]*Entry, error)
}

// EntryService manages the stored search table of each project.
type EntryService interface {
	LookupService

	// ReplaceEntries replaces the project's table wholesale with idx and
	// records its content hash and entry count on the project.
	// Returns ENOTFOUND if project does not exist.
	ReplaceEntries(ctx context.Context, projectID string, idx *Index) error

	// LoadIndex rebuilds the project's table as an Index.
	// Returns ENOTFOUND if project does not exist.
	LoadIndex(ctx context.Context, projectID string) (*Index, error)

	// FindEntry retrieves the entry with exactly the given key.
	// Returns ENOTFOUND if no such entry exists.
	FindEntry(ctx context.Context, projectID, key string) (*Entry, error)
}

// SearchResult is a scored full-text match.
type SearchResult struct {
	Entry *Entry  `json:"entry"`
	Score float64 `json:"score"`
}

// Searcher answers free-text queries over labels and context labels.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]*SearchResult, error)
}
