// Package show renders the documentation an occurrence points at.
package show

import (
	"context"
	"strings"

	"github.com/fwojciec/doxindex"
)

// Document is the rendered documentation of one occurrence.
type Document struct {
	// URL is the resolved target, including its anchor.
	URL string

	Title    string
	Markdown string
}

// Renderer fetches the page an occurrence targets, extracts the anchored
// block and converts it to Markdown.
type Renderer struct {
	// Fetchers fetch pages by URL scheme ("http", "https", "file").
	Fetchers map[string]doxindex.Fetcher

	Extractor doxindex.Extractor

	// NewConverter returns a converter for HTML extracted from pageURL.
	NewConverter func(pageURL string) doxindex.Converter
}

// Render renders occ, an occurrence in project's table.
func (r *Renderer) Render(ctx context.Context, project *doxindex.Project, occ doxindex.Occurrence) (*Document, error) {
	base, err := project.SearchBase()
	if err != nil {
		return nil, err
	}

	target, err := occ.Resolve(base)
	if err != nil {
		return nil, err
	}

	fetcher, ok := r.Fetchers[strings.ToLower(target.Scheme)]
	if !ok {
		return nil, doxindex.Errorf(doxindex.EINVALID, "no fetcher for %q", target.String())
	}

	page := *target
	page.Fragment = ""
	pageURL := page.String()

	html, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	extracted, err := r.Extractor.Extract(html, occ.Anchor)
	if err != nil {
		return nil, err
	}

	markdown, err := r.NewConverter(pageURL).Convert(extracted.ContentHTML)
	if err != nil {
		return nil, err
	}

	return &Document{
		URL:      target.String(),
		Title:    extracted.Title,
		Markdown: markdown,
	}, nil
}

// RenderEntry renders the occurrence of e at position n.
// Returns ENOTFOUND if e has no such occurrence.
func (r *Renderer) RenderEntry(ctx context.Context, project *doxindex.Project, e *doxindex.Entry, n int) (*Document, error) {
	if n < 0 || n >= len(e.Occurrences) {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "%q has %d occurrences, no occurrence %d", e.Label, len(e.Occurrences), n+1)
	}
	return r.Render(ctx, project, e.Occurrences[n])
}

// FindEntry returns the entry named by name, which may be a key or a label.
// Returns ENOTFOUND if neither matches.
func FindEntry(ctx context.Context, entries doxindex.EntryService, projectID, name string) (*doxindex.Entry, error) {
	e, err := entries.FindEntry(ctx, projectID, name)
	if doxindex.ErrorCode(err) != doxindex.ENOTFOUND {
		return e, err
	}
	if key := doxindex.NormalizeKey(name); key != strings.ToLower(name) {
		if e, err := entries.FindEntry(ctx, projectID, key); doxindex.ErrorCode(err) != doxindex.ENOTFOUND {
			return e, err
		}
	}
	return nil, doxindex.Errorf(doxindex.ENOTFOUND, "no entry named %q", name)
}
