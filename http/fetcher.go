// Package http provides an HTTP-based implementation of doxindex.Fetcher
// for retrieving search tables and generated pages from a documentation site.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/doxindex"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies requests made by the fetcher.
const DefaultUserAgent = "doxindex/1.0"

// DefaultMaxBodySize caps the size of a fetched resource.
const DefaultMaxBodySize = 64 << 20

// Ensure Fetcher implements doxindex.Fetcher at compile time.
var _ doxindex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves content from URLs using HTTP requests.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each request, body included.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the largest response body accepted, in bytes.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch retrieves the content at the given URL.
// Returns ENOTFOUND for 404 and 410 responses.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", doxindex.Errorf(doxindex.EINVALID, "invalid URL %q: %v", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", doxindex.Errorf(doxindex.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, url)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return "", err
	}
	if int64(len(body)) > f.maxBodySize {
		return "", fmt.Errorf("response for %s exceeds %d bytes", url, f.maxBodySize)
	}

	return string(body), nil
}

// Close drops idle keep-alive connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
