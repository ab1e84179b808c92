package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/doxindex"
)

// FetchFunc fetches the content at url.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff between fetch attempts: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
}

// Retry repeats a failing fetch, sleeping Delays[i] before retry i+1.
// A nil Delays means a single attempt.
type Retry struct {
	Delays []time.Duration

	// OnRetry, if set, is called before each sleep with the attempt about
	// to be made (starting at 2) and the error that caused it.
	OnRetry func(url string, attempt int, err error)
}

// Do calls fetch until it succeeds or attempts run out, returning the last
// error. ENOTFOUND and EINVALID are final and returned at once.
func (r Retry) Do(ctx context.Context, url string, fetch FetchFunc) (string, error) {
	for attempt := 1; ; attempt++ {
		content, err := fetch(ctx, url)
		if err == nil {
			return content, nil
		}
		if !retryable(err) || attempt > len(r.Delays) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if r.OnRetry != nil {
			r.OnRetry(url, attempt+1, err)
		}

		timer := time.NewTimer(r.Delays[attempt-1])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func retryable(err error) bool {
	switch doxindex.ErrorCode(err) {
	case doxindex.ENOTFOUND, doxindex.EINVALID:
		return false
	}
	return true
}
