package mock

import (
	"context"

	"github.com/fwojciec/doxindex"
)

var _ doxindex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of doxindex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ doxindex.HostLimiter = (*HostLimiter)(nil)

type HostLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}
