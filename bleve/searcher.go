// Package bleve provides full-text search over search table entries.
package bleve

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/fwojciec/doxindex"
)

// Ensure Searcher implements doxindex.Searcher at compile time.
var _ doxindex.Searcher = (*Searcher)(nil)

// DefaultLimit is the number of results returned when no limit is given.
const DefaultLimit = 10

// Field boosts. A key prefix hit ranks above a word in the label, which
// ranks above a word in an occurrence context.
const (
	keyBoost     = 3.0
	labelBoost   = 2.0
	contextBoost = 1.0
)

// batchSize is the number of entries submitted to the index at once.
const batchSize = 500

// Searcher answers free-text queries against an in-memory bleve index of
// one search table.
type Searcher struct {
	index   bleve.Index
	entries map[string]*doxindex.Entry
}

// NewSearcher indexes every entry of idx. The caller must Close the
// Searcher to release the index.
func NewSearcher(idx *doxindex.Index) (*Searcher, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	s := &Searcher{
		index:   index,
		entries: make(map[string]*doxindex.Entry, idx.Len()),
	}

	batch := index.NewBatch()
	for e := range idx.Entries() {
		s.entries[e.Key] = e
		if err := batch.Index(e.Key, document(e)); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index entry %q: %w", e.Key, err)
		}
		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				index.Close()
				return nil, fmt.Errorf("failed to index batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to index final batch: %w", err)
		}
	}

	return s, nil
}

// newMapping indexes keys verbatim for prefix queries and analyzes labels
// and contexts as text.
func newMapping() mapping.IndexMapping {
	keyField := bleve.NewTextFieldMapping()
	keyField.Analyzer = keyword.Name

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("key", keyField)
	doc.AddFieldMappingsAt("label", textField)
	doc.AddFieldMappingsAt("context", textField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// document returns the indexed fields of e. Display texts and contexts of
// every occurrence are folded into one field.
func document(e *doxindex.Entry) map[string]any {
	var words []string
	for _, occ := range e.Occurrences {
		if occ.Text != "" && occ.Text != e.Label {
			words = append(words, occ.Text)
		}
		if occ.Context != "" {
			words = append(words, occ.Context)
		}
	}
	return map[string]any{
		"key":     e.Key,
		"label":   e.Label,
		"context": strings.Join(words, " "),
	}
}

// Search returns the entries that best match query, highest score first.
// Returns EINVALID if query is blank.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*doxindex.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, doxindex.Errorf(doxindex.EINVALID, "search query required")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := bleve.NewPrefixQuery(doxindex.NormalizeKey(query))
	key.SetField("key")
	key.SetBoost(keyBoost)

	label := bleve.NewMatchQuery(query)
	label.SetField("label")
	label.SetBoost(labelBoost)

	scope := bleve.NewMatchQuery(query)
	scope.SetField("context")
	scope.SetBoost(contextBoost)

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(key, label, scope), limit, 0, false)
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]*doxindex.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		e, ok := s.entries[hit.ID]
		if !ok {
			continue
		}
		results = append(results, &doxindex.SearchResult{Entry: e, Score: hit.Score})
	}
	return results, nil
}

// Close releases the index.
func (s *Searcher) Close() error {
	return s.index.Close()
}
