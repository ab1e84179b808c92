package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flaky fails the first n calls with err, then returns "ok".
func flaky(n int, err error) (crawl.FetchFunc, *int) {
	calls := 0
	return func(_ context.Context, _ string) (string, error) {
		calls++
		if calls <= n {
			return "", err
		}
		return "ok", nil
	}, &calls
}

func TestRetry_Do(t *testing.T) {
	t.Parallel()

	const target = "https://x.org/search/all_66.js"

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()

		fetch, calls := flaky(2, errors.New("timeout"))
		var attempts []int
		retry := crawl.Retry{
			Delays: []time.Duration{0, 0, 0},
			OnRetry: func(url string, attempt int, err error) {
				assert.Equal(t, target, url)
				assert.EqualError(t, err, "timeout")
				attempts = append(attempts, attempt)
			},
		}

		content, err := retry.Do(context.Background(), target, fetch)

		require.NoError(t, err)
		assert.Equal(t, "ok", content)
		assert.Equal(t, 3, *calls)
		assert.Equal(t, []int{2, 3}, attempts)
	})

	t.Run("gives up after the last delay", func(t *testing.T) {
		t.Parallel()

		fetch, calls := flaky(10, errors.New("timeout"))

		_, err := crawl.Retry{Delays: []time.Duration{0, 0}}.Do(context.Background(), target, fetch)

		require.EqualError(t, err, "timeout")
		assert.Equal(t, 3, *calls)
	})

	t.Run("makes one attempt without delays", func(t *testing.T) {
		t.Parallel()

		fetch, calls := flaky(1, errors.New("timeout"))

		_, err := crawl.Retry{}.Do(context.Background(), target, fetch)

		require.Error(t, err)
		assert.Equal(t, 1, *calls)
	})

	t.Run("returns final errors at once", func(t *testing.T) {
		t.Parallel()

		for _, code := range []string{doxindex.ENOTFOUND, doxindex.EINVALID} {
			fetch, calls := flaky(1, doxindex.Errorf(code, "no"))

			_, err := crawl.Retry{Delays: []time.Duration{0, 0}}.Do(context.Background(), target, fetch)

			assert.Equal(t, code, doxindex.ErrorCode(err))
			assert.Equal(t, 1, *calls)
		}
	})

	t.Run("stops sleeping when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		retry := crawl.Retry{
			Delays:  []time.Duration{time.Hour},
			OnRetry: func(string, int, error) { cancel() },
		}
		fetch, _ := flaky(1, errors.New("timeout"))

		_, err := retry.Do(ctx, target, fetch)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDefaultRetryDelays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, crawl.DefaultRetryDelays())
}
