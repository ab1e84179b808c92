// Package lru caches lookup results in memory.
package lru

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/doxindex"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Ensure LookupCache implements doxindex.LookupService at compile time.
var _ doxindex.LookupService = (*LookupCache)(nil)

// Defaults for NewLookupCache.
const (
	DefaultSize = 1024
	DefaultTTL  = 5 * time.Minute
)

type lookupKey struct {
	projectID string
	prefixes  string
	limit     int
}

// LookupCache wraps a LookupService with an expiring LRU cache. Queries
// that compile to the same key prefixes share a cache slot, so "Fetch" and
// "fetch" are answered once. Errors are not cached.
type LookupCache struct {
	service doxindex.LookupService
	cache   *expirable.LRU[lookupKey, []*doxindex.Entry]
}

// NewLookupCache returns a cache holding up to size results for ttl.
// Non-positive arguments select DefaultSize and DefaultTTL.
func NewLookupCache(service doxindex.LookupService, size int, ttl time.Duration) *LookupCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LookupCache{
		service: service,
		cache:   expirable.NewLRU[lookupKey, []*doxindex.Entry](size, nil, ttl),
	}
}

// Lookup returns cached results or delegates to the wrapped service.
// Returned entries are shared between callers and must not be modified.
func (c *LookupCache) Lookup(ctx context.Context, projectID, query string, limit int) ([]*doxindex.Entry, error) {
	if limit < 0 {
		limit = 0
	}
	key := lookupKey{
		projectID: projectID,
		prefixes:  strings.Join(doxindex.ParseQuery(query).Prefixes(), "\x00"),
		limit:     limit,
	}

	if entries, ok := c.cache.Get(key); ok {
		return entries, nil
	}

	entries, err := c.service.Lookup(ctx, projectID, query, limit)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, entries)
	return entries, nil
}

// Invalidate drops every cached result for the project.
func (c *LookupCache) Invalidate(projectID string) {
	for _, key := range c.cache.Keys() {
		if key.projectID == projectID {
			c.cache.Remove(key)
		}
	}
}
