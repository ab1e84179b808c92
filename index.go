package doxindex

import (
	"context"
	"io"
	"iter"
	"slices"
	"sort"
	"strings"
)

// KeyFilterDepth is the longest key prefix recorded in a KeyFilter.
// Longer query prefixes are tested on their first KeyFilterDepth bytes.
const KeyFilterDepth = 8

// KeyFilter is a set of key prefixes used to skip lookups that cannot match.
// False positives are allowed; false negatives are not.
type KeyFilter interface {
	Add(prefix string)
	Test(prefix string) bool
}

// IndexOption configures an Index at construction.
type IndexOption func(*indexOptions)

type indexOptions struct {
	newKeyFilter func(n uint) KeyFilter
}

// WithKeyFilter installs a prefix filter built by newFilter, which receives
// the number of prefixes that will be added.
func WithKeyFilter(newFilter func(n uint) KeyFilter) IndexOption {
	return func(o *indexOptions) {
		o.newKeyFilter = newFilter
	}
}

// Index is an immutable, ordered search table. It is safe for concurrent use
// by multiple goroutines. Entries returned by an Index must not be modified.
type Index struct {
	entries []*Entry
	byKey   map[string]int

	// sorted holds entry positions ordered by key for prefix range scans.
	sorted []int
	filter KeyFilter
}

// NewIndex builds an Index from entries in table order. Entries are copied.
// Keys are lowercased; entries sharing a key are grouped into the first one,
// with occurrences kept in source order. Returns EMALFORMED if any entry is
// not well formed, and no Index is built in that case.
func NewIndex(entries []*Entry, opts ...IndexOption) (*Index, error) {
	var o indexOptions
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		entries: make([]*Entry, 0, len(entries)),
		byKey:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		if e == nil {
			return nil, Errorf(EMALFORMED, "entry %d: missing", i)
		}
		if err := e.Validate(); err != nil {
			return nil, Errorf(EMALFORMED, "entry %d: %s", i, ErrorMessage(err))
		}

		key := strings.ToLower(e.Key)
		if pos, ok := idx.byKey[key]; ok {
			idx.entries[pos].Occurrences = append(idx.entries[pos].Occurrences, e.Occurrences...)
			continue
		}

		idx.byKey[key] = len(idx.entries)
		idx.entries = append(idx.entries, &Entry{
			Key:         key,
			Label:       e.Label,
			Occurrences: slices.Clone(e.Occurrences),
		})
	}

	idx.sorted = make([]int, len(idx.entries))
	for i := range idx.sorted {
		idx.sorted[i] = i
	}
	slices.SortFunc(idx.sorted, func(a, b int) int {
		return strings.Compare(idx.entries[a].Key, idx.entries[b].Key)
	})

	if o.newKeyFilter != nil {
		var n uint
		for _, e := range idx.entries {
			n += uint(min(len(e.Key), KeyFilterDepth))
		}
		idx.filter = o.newKeyFilter(max(n, 1))
		for _, e := range idx.entries {
			for l := 1; l <= min(len(e.Key), KeyFilterDepth); l++ {
				idx.filter.Add(e.Key[:l])
			}
		}
	}

	return idx, nil
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// OccurrenceCount returns the total number of occurrences across all entries.
func (idx *Index) OccurrenceCount() int {
	var n int
	for _, e := range idx.entries {
		n += len(e.Occurrences)
	}
	return n
}

// Entries returns every entry in table order.
func (idx *Index) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range idx.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Get returns the entry with exactly the given key.
func (idx *Index) Get(key string) (*Entry, bool) {
	pos, ok := idx.byKey[strings.ToLower(key)]
	if !ok {
		return nil, false
	}
	return idx.entries[pos], true
}

// Lookup returns the entries whose key matches query, in table order.
// The sequence is computed when iterated and may be iterated any number of times.
func (idx *Index) Lookup(query string) iter.Seq[*Entry] {
	return idx.LookupQuery(ParseQuery(query))
}

// LookupQuery is like Lookup but takes a compiled query.
func (idx *Index) LookupQuery(q Query) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		if q.IsEmpty() {
			for _, e := range idx.entries {
				if !yield(e) {
					return
				}
			}
			return
		}

		if !idx.mayMatch(q) {
			return
		}

		for _, pos := range idx.positions(q) {
			if !yield(idx.entries[pos]) {
				return
			}
		}
	}
}

// positions returns the table positions of matching entries in ascending order.
func (idx *Index) positions(q Query) []int {
	var positions []int
	for _, prefix := range q.Prefixes() {
		lo := sort.Search(len(idx.sorted), func(i int) bool {
			return idx.entries[idx.sorted[i]].Key >= prefix
		})
		for i := lo; i < len(idx.sorted); i++ {
			pos := idx.sorted[i]
			if !strings.HasPrefix(idx.entries[pos].Key, prefix) {
				break
			}
			positions = append(positions, pos)
		}
	}
	slices.Sort(positions)
	return slices.Compact(positions)
}

func (idx *Index) mayMatch(q Query) bool {
	if idx.filter == nil {
		return true
	}
	for _, prefix := range q.Prefixes() {
		p := prefix[:min(len(prefix), KeyFilterDepth)]
		if p == "" || idx.filter.Test(p) {
			return true
		}
	}
	return false
}

// Merge combines indexes into one. Entries are grouped by key in first-seen
// order and identical occurrences under the same key are dropped.
func Merge(indexes []*Index, opts ...IndexOption) (*Index, error) {
	var entries []*Entry
	byKey := make(map[string]*Entry)
	for _, idx := range indexes {
		if idx == nil {
			continue
		}
		for _, e := range idx.entries {
			merged, ok := byKey[e.Key]
			if !ok {
				merged = &Entry{Key: e.Key, Label: e.Label}
				byKey[e.Key] = merged
				entries = append(entries, merged)
			}
			for _, occ := range e.Occurrences {
				if !slices.Contains(merged.Occurrences, occ) {
					merged.Occurrences = append(merged.Occurrences, occ)
				}
			}
		}
	}
	return NewIndex(entries, opts...)
}

// IndexParser decodes a serialized search table.
type IndexParser interface {
	// ParseIndex decodes a complete table from r.
	// Returns EMALFORMED if the table does not have the Entry/Occurrence shape.
	ParseIndex(ctx context.Context, r io.Reader) (*Index, error)
}

// IndexLoader loads a search table from a source location.
type IndexLoader interface {
	// LoadIndex loads the table found at source, which may name a single
	// table file or a directory of them depending on the implementation.
	LoadIndex(ctx context.Context, source string) (*Index, error)
}

// IndexEncoder writes search tables in their serialized form.
type IndexEncoder interface {
	// EncodeEntries writes entries to w as one complete table.
	EncodeEntries(w io.Writer, entries iter.Seq[*Entry]) error

	// EncodeSections writes the section listing of a search directory to w.
	EncodeSections(w io.Writer, sections []SearchSection) error
}
