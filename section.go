package doxindex

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultSection is the section that holds every entry of a search directory.
const DefaultSection = "all"

// SearchSection describes one family of search table files, as listed by
// the generator in searchdata.js.
type SearchSection struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`    // file prefix, e.g. "all", "functions"
	Label   string `json:"label"`   // display label, e.g. "All", "Functions"
	Letters string `json:"letters"` // first letters that have a table file
}

// FileNames returns the table file name for each letter of the section.
func (s SearchSection) FileNames() []string {
	names := make([]string, 0, utf8.RuneCountInString(s.Letters))
	for _, r := range s.Letters {
		names = append(names, s.FileName(r))
	}
	return names
}

// FileName returns the table file name holding entries that start with letter.
//
// Example: section "all", letter 'f' → "all_66.js"
func (s SearchSection) FileName(letter rune) string {
	return fmt.Sprintf("%s_%x.js", s.Name, letter)
}

// FindSection returns the section with the given name.
func FindSection(sections []SearchSection, name string) (SearchSection, error) {
	for _, s := range sections {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return SearchSection{}, Errorf(ENOTFOUND, "search section %q not found", name)
}

// EntryLetter returns the letter whose table file holds e.
func EntryLetter(e *Entry) rune {
	r, _ := utf8.DecodeRuneInString(strings.ToLower(e.Label))
	return r
}

// SectionParser decodes the section listing of a search directory.
type SectionParser interface {
	ParseSections(ctx context.Context, r io.Reader) ([]SearchSection, error)
}
