package mock

import (
	"context"
	"io"
	"iter"

	"github.com/fwojciec/doxindex"
)

var (
	_ doxindex.IndexParser   = (*IndexParser)(nil)
	_ doxindex.SectionParser = (*SectionParser)(nil)
	_ doxindex.IndexLoader   = (*IndexLoader)(nil)
	_ doxindex.IndexEncoder  = (*IndexEncoder)(nil)
)

// IndexParser is a mock implementation of doxindex.IndexParser.
type IndexParser struct {
	ParseIndexFn func(ctx context.Context, r io.Reader) (*doxindex.Index, error)
}

func (p *IndexParser) ParseIndex(ctx context.Context, r io.Reader) (*doxindex.Index, error) {
	return p.ParseIndexFn(ctx, r)
}

// SectionParser is a mock implementation of doxindex.SectionParser.
type SectionParser struct {
	ParseSectionsFn func(ctx context.Context, r io.Reader) ([]doxindex.SearchSection, error)
}

func (p *SectionParser) ParseSections(ctx context.Context, r io.Reader) ([]doxindex.SearchSection, error) {
	return p.ParseSectionsFn(ctx, r)
}

// IndexLoader is a mock implementation of doxindex.IndexLoader.
type IndexLoader struct {
	LoadIndexFn func(ctx context.Context, source string) (*doxindex.Index, error)
}

func (l *IndexLoader) LoadIndex(ctx context.Context, source string) (*doxindex.Index, error) {
	return l.LoadIndexFn(ctx, source)
}

// IndexEncoder is a mock implementation of doxindex.IndexEncoder.
type IndexEncoder struct {
	EncodeEntriesFn  func(w io.Writer, entries iter.Seq[*doxindex.Entry]) error
	EncodeSectionsFn func(w io.Writer, sections []doxindex.SearchSection) error
}

func (e *IndexEncoder) EncodeEntries(w io.Writer, entries iter.Seq[*doxindex.Entry]) error {
	return e.EncodeEntriesFn(w, entries)
}

func (e *IndexEncoder) EncodeSections(w io.Writer, sections []doxindex.SearchSection) error {
	return e.EncodeSectionsFn(w, sections)
}
