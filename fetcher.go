package doxindex

import "context"

// Fetcher retrieves raw content (search tables, documentation pages) from URLs.
type Fetcher interface {
	// Fetch retrieves the content at url.
	// Returns ENOTFOUND if the server reports the resource missing.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (string, error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// HostLimiter paces requests made to a single host.
type HostLimiter interface {
	// Wait blocks until a request to host may proceed, or ctx is done.
	Wait(ctx context.Context, host string) error
}
