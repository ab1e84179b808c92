package show_test

import (
	"context"
	"testing"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/mock"
	"github.com/fwojciec/doxindex/show"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(fetched *[]string, converterBase *string) *show.Renderer {
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			*fetched = append(*fetched, url)
			return "<html>page</html>", nil
		},
	}
	return &show.Renderer{
		Fetchers: map[string]doxindex.Fetcher{"https": fetcher, "file": fetcher},
		Extractor: &mock.Extractor{
			ExtractFn: func(html, anchor string) (*doxindex.ExtractResult, error) {
				return &doxindex.ExtractResult{Title: "fi()", ContentHTML: "<p>" + anchor + "</p>"}, nil
			},
		},
		NewConverter: func(pageURL string) doxindex.Converter {
			*converterBase = pageURL
			return &mock.Converter{
				ConvertFn: func(html string) (string, error) {
					return "md:" + html, nil
				},
			}
		},
	}
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	project := &doxindex.Project{Name: "basis", SourceURL: "https://example.com/basis/html"}
	occ := doxindex.Occurrence{Text: "fi()", URL: "../basistest_8sh.html", Anchor: "a9118", Context: "basistest.sh"}

	t.Run("fetches the page and renders the anchored block", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		var converterBase string
		doc, err := newRenderer(&fetched, &converterBase).Render(context.Background(), project, occ)
		require.NoError(t, err)

		assert.Equal(t, []string{"https://example.com/basis/html/basistest_8sh.html"}, fetched)
		assert.Equal(t, "https://example.com/basis/html/basistest_8sh.html", converterBase)
		assert.Equal(t, &show.Document{
			URL:      "https://example.com/basis/html/basistest_8sh.html#a9118",
			Title:    "fi()",
			Markdown: "md:<p>a9118</p>",
		}, doc)
	})

	t.Run("reads local projects through the file fetcher", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		var converterBase string
		local := &doxindex.Project{Name: "basis", SourceURL: "file:///srv/basis/html/search"}
		_, err := newRenderer(&fetched, &converterBase).Render(context.Background(), local, occ)
		require.NoError(t, err)

		assert.Equal(t, []string{"file:///srv/basis/html/basistest_8sh.html"}, fetched)
	})

	t.Run("returns EINVALID without a fetcher for the scheme", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		var converterBase string
		plain := &doxindex.Project{Name: "basis", SourceURL: "http://example.com/basis/html"}
		_, err := newRenderer(&fetched, &converterBase).Render(context.Background(), plain, occ)
		assert.Equal(t, doxindex.EINVALID, doxindex.ErrorCode(err))
		assert.Empty(t, fetched)
	})

	t.Run("returns extractor errors", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		var converterBase string
		r := newRenderer(&fetched, &converterBase)
		r.Extractor = &mock.Extractor{
			ExtractFn: func(string, string) (*doxindex.ExtractResult, error) {
				return nil, doxindex.Errorf(doxindex.ENOTFOUND, "anchor not found")
			},
		}

		_, err := r.Render(context.Background(), project, occ)
		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})
}

func TestRenderer_RenderEntry(t *testing.T) {
	t.Parallel()

	project := &doxindex.Project{Name: "basis", SourceURL: "https://example.com/basis/html"}
	entry := &doxindex.Entry{
		Key:   "fi",
		Label: "fi",
		Occurrences: []doxindex.Occurrence{
			{Text: "fi()", URL: "../basistest-cron_8sh.html", Anchor: "a1"},
			{Text: "fi()", URL: "../basistest_8sh.html", Anchor: "a2"},
		},
	}

	t.Run("renders the selected occurrence", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		var converterBase string
		doc, err := newRenderer(&fetched, &converterBase).RenderEntry(context.Background(), project, entry, 1)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/basis/html/basistest_8sh.html#a2", doc.URL)
	})

	t.Run("returns ENOTFOUND for an occurrence out of range", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		var converterBase string
		_, err := newRenderer(&fetched, &converterBase).RenderEntry(context.Background(), project, entry, 2)
		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
	})
}

func TestFindEntry(t *testing.T) {
	t.Parallel()

	stored := map[string]*doxindex.Entry{
		"fetch":                    {Key: "fetch", Label: "fetch"},
		"find_20package_20modules": {Key: "find_20package_20modules", Label: "Find Package Modules"},
	}
	entries := &mock.EntryService{
		FindEntryFn: func(_ context.Context, _, key string) (*doxindex.Entry, error) {
			if e, ok := stored[key]; ok {
				return e, nil
			}
			return nil, doxindex.Errorf(doxindex.ENOTFOUND, "entry %q not found", key)
		},
	}

	t.Run("finds an entry by key", func(t *testing.T) {
		t.Parallel()

		e, err := show.FindEntry(context.Background(), entries, "p1", "fetch")
		require.NoError(t, err)
		assert.Equal(t, "fetch", e.Key)
	})

	t.Run("finds an entry by label", func(t *testing.T) {
		t.Parallel()

		e, err := show.FindEntry(context.Background(), entries, "p1", "Find Package Modules")
		require.NoError(t, err)
		assert.Equal(t, "find_20package_20modules", e.Key)
	})

	t.Run("returns ENOTFOUND when nothing matches", func(t *testing.T) {
		t.Parallel()

		_, err := show.FindEntry(context.Background(), entries, "p1", "fetch size")
		assert.Equal(t, doxindex.ENOTFOUND, doxindex.ErrorCode(err))
		assert.Contains(t, doxindex.ErrorMessage(err), "fetch size")
	})
}
