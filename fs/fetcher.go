package fs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fwojciec/doxindex"
)

// Ensure Fetcher implements doxindex.Fetcher at compile time.
var _ doxindex.Fetcher = (*Fetcher)(nil)

// Fetcher reads generated pages from the local file system. It accepts
// file URLs and plain paths.
type Fetcher struct{}

// NewFetcher creates a new Fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch returns the content of the file rawURL names.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := localPath(rawURL)
	if err != nil {
		return "", err
	}

	b, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return "", doxindex.Errorf(doxindex.ENOTFOUND, "file %q not found", name)
	} else if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(b), nil
}

// Close is a no-op.
func (f *Fetcher) Close() error {
	return nil
}

func localPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain path, including Windows drive letters.
		return rawURL, nil
	}
	if u.Scheme != "file" {
		return "", doxindex.Errorf(doxindex.EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", doxindex.Errorf(doxindex.EINVALID, "remote file URL %q not supported", rawURL)
	}
	return filepath.FromSlash(u.Path), nil
}
