package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/mock"
	doxslog "github.com/fwojciec/doxindex/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingIndexLoader_LoadIndex(t *testing.T) {
	t.Parallel()

	t.Run("logs entry and occurrence counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.IndexLoader{
			LoadIndexFn: func(ctx context.Context, source string) (*doxindex.Index, error) {
				return doxindex.NewIndex([]*doxindex.Entry{{
					Key:   "fi",
					Label: "fi",
					Occurrences: []doxindex.Occurrence{
						{Text: "fi()", URL: "../basistest-cron_8sh.html", Anchor: "a1", Context: "basistest-cron.sh", Parent: true},
						{Text: "fi()", URL: "../basistest_8sh.html", Anchor: "a2", Context: "basistest.sh", Parent: true},
					},
				}})
			},
		}

		loader := doxslog.NewLoggingIndexLoader(inner, logger)
		idx, err := loader.LoadIndex(context.Background(), "/srv/basis/html/search")

		require.NoError(t, err)
		assert.Equal(t, 1, idx.Len())
		output := buf.String()
		assert.Contains(t, output, "load index")
		assert.Contains(t, output, "source=/srv/basis/html/search")
		assert.Contains(t, output, "entries=1")
		assert.Contains(t, output, "occurrences=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.IndexLoader{
			LoadIndexFn: func(ctx context.Context, source string) (*doxindex.Index, error) {
				return nil, errors.New("permission denied")
			},
		}

		loader := doxslog.NewLoggingIndexLoader(inner, logger)
		_, err := loader.LoadIndex(context.Background(), "/srv/basis/html/search")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "entries=0")
		assert.Contains(t, output, "err=\"permission denied\"")
	})
}
