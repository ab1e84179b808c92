package doxindex

import (
	"net/url"
	"strings"
)

// ScopeSeparator separates the display text from the context label in the
// raw scope string of an occurrence ("fi():&#160;basistest.sh" once decoded).
const ScopeSeparator = ":\u00a0"

// Entry represents one searchable symbol or keyword and its locations.
type Entry struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Validate returns an error if the entry does not have the Entry/Occurrence shape.
func (e *Entry) Validate() error {
	if e.Key == "" {
		return Errorf(EMALFORMED, "entry key required")
	}
	if e.Label == "" {
		return Errorf(EMALFORMED, "entry %q: label required", e.Key)
	}
	if len(e.Occurrences) == 0 {
		return Errorf(EMALFORMED, "entry %q: at least one occurrence required", e.Key)
	}
	for i := range e.Occurrences {
		if e.Occurrences[i].URL == "" {
			return Errorf(EMALFORMED, "entry %q: occurrence %d: target URL required", e.Key, i)
		}
	}
	return nil
}

// Occurrence represents one concrete documentation-page location for an Entry.
type Occurrence struct {
	// Text is the display text of this location, e.g. "fi()".
	Text string `json:"text"`

	// URL is the page path relative to the search table, without fragment.
	URL string `json:"url"`

	// Anchor optionally selects a location within the page.
	Anchor string `json:"anchor,omitempty"`

	// Context disambiguates the location when a label resolves to several,
	// e.g. the enclosing file or namespace.
	Context string `json:"context,omitempty"`

	// Parent is the generator's target flag: true opens the page in the
	// parent frame, false in a new window.
	Parent bool `json:"parent"`
}

// Target returns the URL with its anchor fragment.
func (o *Occurrence) Target() string {
	if o.Anchor == "" {
		return o.URL
	}
	return o.URL + "#" + o.Anchor
}

// Resolve resolves the occurrence target against base, which is the location
// of the search table itself.
func (o *Occurrence) Resolve(base *url.URL) (*url.URL, error) {
	ref, err := url.Parse(o.Target())
	if err != nil {
		return nil, Errorf(EINVALID, "invalid target %q: %v", o.Target(), err)
	}
	return base.ResolveReference(ref), nil
}

// Scope returns the raw scope string as the generator writes it for an
// occurrence of an entry with the given label.
//
// The separator is written whenever SplitScope could not recover Text and
// Context without it.
func (o *Occurrence) Scope(label string) string {
	if (o.Text == "" || o.Text == label) && !strings.Contains(o.Context, ScopeSeparator) {
		return o.Context
	}
	text := o.Text
	if text == "" {
		text = label
	}
	return text + ScopeSeparator + o.Context
}

// SplitTarget splits a target into its URL and anchor fragment.
func SplitTarget(target string) (u, anchor string) {
	u, anchor, _ = strings.Cut(target, "#")
	return u, anchor
}

// SplitScope splits a raw scope string into display text and context label.
// When the scope has no separator, the display text is the label and the
// whole scope is the context.
func SplitScope(label, scope string) (text, context string) {
	if before, after, ok := strings.Cut(scope, ScopeSeparator); ok {
		return before, after
	}
	return label, scope
}
