package mcp

import (
	"context"
	"io"
	"sync"

	"github.com/fwojciec/doxindex"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// sharedSearcher is a cached searcher that stays open until it has been
// evicted and every caller holding it has released it.
type sharedSearcher struct {
	doxindex.Searcher

	mu      sync.Mutex
	refs    int
	evicted bool
}

func (s *sharedSearcher) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evicted {
		return false
	}
	s.refs++
	return true
}

func (s *sharedSearcher) release() {
	s.mu.Lock()
	s.refs--
	done := s.evicted && s.refs == 0
	s.mu.Unlock()
	if done {
		s.close()
	}
}

func (s *sharedSearcher) evict() {
	s.mu.Lock()
	s.evicted = true
	done := s.refs == 0
	s.mu.Unlock()
	if done {
		s.close()
	}
}

func (s *sharedSearcher) close() {
	if c, ok := s.Searcher.(io.Closer); ok {
		_ = c.Close()
	}
}

// searcherCache holds full-text searchers keyed by project ID and content
// hash, so a reimported table is indexed again.
type searcherCache struct {
	lru   *expirable.LRU[string, *sharedSearcher]
	group singleflight.Group
}

func newSearcherCache(size int) *searcherCache {
	return &searcherCache{
		lru: expirable.NewLRU[string, *sharedSearcher](size, func(_ string, s *sharedSearcher) {
			s.evict()
		}, 0),
	}
}

// acquire returns the searcher for key, building it with build when it is
// not cached. Concurrent callers for the same key share one build. The
// caller must release the returned searcher.
func (c *searcherCache) acquire(ctx context.Context, key string, build func() (doxindex.Searcher, error)) (*sharedSearcher, error) {
	for attempt := 0; attempt < 3; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s, ok := c.lru.Get(key); ok && s.acquire() {
			return s, nil
		}

		v, err, _ := c.group.Do(key, func() (any, error) {
			if s, ok := c.lru.Peek(key); ok {
				return s, nil
			}
			searcher, err := build()
			if err != nil {
				return nil, err
			}
			s := &sharedSearcher{Searcher: searcher}
			c.lru.Add(key, s)
			return s, nil
		})
		if err != nil {
			return nil, err
		}
		if s := v.(*sharedSearcher); s.acquire() {
			return s, nil
		}
	}
	return nil, doxindex.Errorf(doxindex.EINTERNAL, "searcher for %s was evicted while in use", key)
}
