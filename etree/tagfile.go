// Package etree builds search tables from Doxygen XML tag files using the
// github.com/beevik/etree library.
package etree

import (
	"cmp"
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/doxindex"
)

// DefaultURLPrefix is prepended to page names so that targets resolve
// relative to a search directory, as generated tables do.
const DefaultURLPrefix = "../"

// Compound kinds that do not appear in search tables.
var skippedKinds = map[string]bool{
	"dir": true,
}

// Ensure TagfileParser implements the index interfaces at compile time.
var (
	_ doxindex.IndexParser = (*TagfileParser)(nil)
	_ doxindex.IndexLoader = (*TagfileParser)(nil)
)

// TagfileParser builds an Index from a tag file. Every compound and member
// becomes an occurrence of the entry keyed by its name, with the enclosing
// compound as context. Entries are ordered by key.
type TagfileParser struct {
	// URLPrefix is prepended to every page name. Defaults to DefaultURLPrefix.
	URLPrefix string

	// Options are applied to every Index the parser builds.
	Options []doxindex.IndexOption
}

// NewTagfileParser creates a new TagfileParser.
func NewTagfileParser(opts ...doxindex.IndexOption) *TagfileParser {
	return &TagfileParser{URLPrefix: DefaultURLPrefix, Options: opts}
}

// LoadIndex reads the tag file at path.
func (p *TagfileParser) LoadIndex(ctx context.Context, path string) (*doxindex.Index, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "tag file %q not found", path)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	return p.ParseIndex(ctx, f)
}

// ParseIndex reads a tag file from r.
func (p *TagfileParser) ParseIndex(ctx context.Context, r io.Reader) (*doxindex.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "parsing tag file XML: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "empty tag file XML")
	}
	if root.Tag != "tagfile" {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "unexpected root element <%s>, want <tagfile>", root.Tag)
	}

	var entries []*doxindex.Entry
	for _, compound := range root.SelectElements("compound") {
		if skippedKinds[compound.SelectAttrValue("kind", "")] {
			continue
		}
		entries = append(entries, p.compoundEntries(compound)...)
	}

	slices.SortStableFunc(entries, func(a, b *doxindex.Entry) int {
		return cmp.Compare(a.Key, b.Key)
	})

	return doxindex.NewIndex(entries, p.Options...)
}

// compoundEntries returns the entry of a compound followed by the entries
// of its members.
func (p *TagfileParser) compoundEntries(compound *etree.Element) []*doxindex.Entry {
	name := childText(compound, "name")
	filename := childText(compound, "filename")
	if name == "" || filename == "" {
		return nil
	}

	label := name
	if title := childText(compound, "title"); title != "" {
		label = title
	}

	entries := []*doxindex.Entry{
		newEntry(label, doxindex.Occurrence{
			Text:   label,
			URL:    p.pageURL(filename),
			Parent: true,
		}),
	}

	for _, member := range compound.SelectElements("member") {
		memberName := childText(member, "name")
		if memberName == "" {
			continue
		}
		page := childText(member, "anchorfile")
		if page == "" {
			page = filename
		}

		text := memberName
		if member.SelectAttrValue("kind", "") == "function" {
			text += "()"
		}

		entries = append(entries, newEntry(memberName, doxindex.Occurrence{
			Text:    text,
			URL:     p.pageURL(page),
			Anchor:  childText(member, "anchor"),
			Context: name,
			Parent:  true,
		}))
	}

	return entries
}

// pageURL returns the target URL of a generated page. Older tag files omit
// the .html extension.
func (p *TagfileParser) pageURL(filename string) string {
	if !strings.Contains(filename, ".") {
		filename += ".html"
	}
	prefix := p.URLPrefix
	if prefix == "" {
		prefix = DefaultURLPrefix
	}
	return prefix + filename
}

func newEntry(label string, occ doxindex.Occurrence) *doxindex.Entry {
	return &doxindex.Entry{
		Key:         doxindex.NormalizeKey(label),
		Label:       label,
		Occurrences: []doxindex.Occurrence{occ},
	}
}

// childText returns the trimmed text of the first child element with tag.
func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
