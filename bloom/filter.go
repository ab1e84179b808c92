// Package bloom provides key prefix filters backed by Bloom filters.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/doxindex"
)

// DefaultFalsePositiveRate is the rate used by NewKeyFilter.
const DefaultFalsePositiveRate = 0.01

// Ensure Filter implements doxindex.KeyFilter at compile time.
var _ doxindex.KeyFilter = (*Filter)(nil)

// Filter wraps a Bloom filter for key prefix membership tests.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// NewKeyFilter creates a filter for n prefixes at DefaultFalsePositiveRate.
// It has the signature doxindex.WithKeyFilter expects.
func NewKeyFilter(n uint) doxindex.KeyFilter {
	return NewFilter(n, DefaultFalsePositiveRate)
}

// Add adds a key prefix to the filter.
func (f *Filter) Add(prefix string) {
	f.f.AddString(prefix)
}

// Test returns true if the prefix might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(prefix string) bool {
	return f.f.TestString(prefix)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
