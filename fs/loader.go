// Package fs loads and exports search tables on the local file system.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/fwojciec/doxindex"
)

// SectionsFile lists the sections of a search directory.
const SectionsFile = "searchdata.js"

// SearchDir is the directory generators write search tables to inside their
// HTML output.
const SearchDir = "search"

// Ensure Loader implements doxindex.IndexLoader at compile time.
var _ doxindex.IndexLoader = (*Loader)(nil)

// Loader loads search tables from a single table file or a search directory.
type Loader struct {
	IndexParser   doxindex.IndexParser
	SectionParser doxindex.SectionParser

	// Section selects the table family read from a directory.
	// Defaults to doxindex.DefaultSection.
	Section string

	// Options are applied to the merged Index of a directory.
	Options []doxindex.IndexOption
}

// NewLoader creates a new Loader using parser for tables and sections.
func NewLoader(parser interface {
	doxindex.IndexParser
	doxindex.SectionParser
}, opts ...doxindex.IndexOption) *Loader {
	return &Loader{
		IndexParser:   parser,
		SectionParser: parser,
		Section:       doxindex.DefaultSection,
		Options:       opts,
	}
}

// LoadIndex loads source, which is a table file, a search directory, or an
// HTML output directory holding a search directory. The tables of a directory
// are merged in letter order.
func (l *Loader) LoadIndex(ctx context.Context, source string) (*doxindex.Index, error) {
	info, err := os.Stat(source)
	if errors.Is(err, os.ErrNotExist) {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "search table %q not found", source)
	} else if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return l.parseFile(ctx, source)
	}

	dir := searchDir(source)
	names, err := l.tableFiles(ctx, dir)
	if err != nil {
		return nil, err
	}

	indexes := make([]*doxindex.Index, 0, len(names))
	for _, name := range names {
		idx, err := l.parseFile(ctx, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}

	return doxindex.Merge(indexes, l.Options...)
}

// tableFiles returns the table file names of the selected section in dir.
func (l *Loader) tableFiles(ctx context.Context, dir string) ([]string, error) {
	section := l.Section
	if section == "" {
		section = doxindex.DefaultSection
	}

	f, err := os.Open(filepath.Join(dir, SectionsFile))
	if err == nil {
		defer f.Close()

		sections, err := l.SectionParser.ParseSections(ctx, f)
		if err != nil {
			return nil, annotate(err, SectionsFile)
		}
		s, err := doxindex.FindSection(sections, section)
		if err != nil {
			return nil, err
		}
		return s.FileNames(), nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(dir, section+"_*.js"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "no %q search tables found in %s", section, dir)
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) parseFile(ctx context.Context, path string) (*doxindex.Index, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "search table %q not found", path)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := l.IndexParser.ParseIndex(ctx, f)
	if err != nil {
		return nil, annotate(err, filepath.Base(path))
	}
	return idx, nil
}

// searchDir returns the search directory inside an HTML output directory,
// or dir itself.
func searchDir(dir string) string {
	sub := filepath.Join(dir, SearchDir)
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		return sub
	}
	return dir
}

// annotate prefixes domain error messages with the file they came from.
func annotate(err error, name string) error {
	var e *doxindex.Error
	if errors.As(err, &e) {
		return doxindex.Errorf(e.Code, "%s: %s", name, e.Message)
	}
	return err
}
