package mock

import (
	"context"

	"github.com/fwojciec/doxindex"
)

var (
	_ doxindex.LookupService = (*LookupService)(nil)
	_ doxindex.EntryService  = (*EntryService)(nil)
	_ doxindex.Searcher      = (*Searcher)(nil)
)

// LookupService is a mock implementation of doxindex.LookupService.
type LookupService struct {
	LookupFn func(ctx context.Context, projectID, query string, limit int) ([]*doxindex.Entry, error)
}

func (s *LookupService) Lookup(ctx context.Context, projectID, query string, limit int) ([]*doxindex.Entry, error) {
	return s.LookupFn(ctx, projectID, query, limit)
}

// EntryService is a mock implementation of doxindex.EntryService.
type EntryService struct {
	LookupFn         func(ctx context.Context, projectID, query string, limit int) ([]*doxindex.Entry, error)
	ReplaceEntriesFn func(ctx context.Context, projectID string, idx *doxindex.Index) error
	LoadIndexFn      func(ctx context.Context, projectID string) (*doxindex.Index, error)
	FindEntryFn      func(ctx context.Context, projectID, key string) (*doxindex.Entry, error)
}

func (s *EntryService) Lookup(ctx context.Context, projectID, query string, limit int) ([]*doxindex.Entry, error) {
	return s.LookupFn(ctx, projectID, query, limit)
}

func (s *EntryService) ReplaceEntries(ctx context.Context, projectID string, idx *doxindex.Index) error {
	return s.ReplaceEntriesFn(ctx, projectID, idx)
}

func (s *EntryService) LoadIndex(ctx context.Context, projectID string) (*doxindex.Index, error) {
	return s.LoadIndexFn(ctx, projectID)
}

func (s *EntryService) FindEntry(ctx context.Context, projectID, key string) (*doxindex.Entry, error) {
	return s.FindEntryFn(ctx, projectID, key)
}

// Searcher is a mock implementation of doxindex.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, limit int) ([]*doxindex.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*doxindex.SearchResult, error) {
	return s.SearchFn(ctx, query, limit)
}
