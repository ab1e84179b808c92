package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/doxindex"
	"golang.org/x/time/rate"
)

var _ doxindex.HostLimiter = (*HostLimiter)(nil)

// HostLimiter paces requests with one token bucket per host, so table files
// on different hosts are fetched independently.
type HostLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewHostLimiter returns a HostLimiter allowing rps requests per second to
// each host, with up to burst requests let through at once. A burst below 1
// is treated as 1.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	return &HostLimiter{
		limit:   rate.Limit(rps),
		burst:   max(burst, 1),
		buckets: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until host has a token available. Host names are compared
// without regard to case.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	return h.bucket(strings.ToLower(host)).Wait(ctx)
}

func (h *HostLimiter) bucket(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.buckets[host]
	if !ok {
		b = rate.NewLimiter(h.limit, h.burst)
		h.buckets[host] = b
	}
	return b
}
