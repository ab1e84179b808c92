package doxindex

import "strings"

// FormatEntries formats entries for display, one label line per entry
// followed by an indented line per occurrence.
func FormatEntries(entries []*Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Label)
		for _, occ := range e.Occurrences {
			b.WriteString("\n  ")
			b.WriteString(FormatOccurrence(e.Label, occ))
		}
	}
	return b.String()
}

// FormatOccurrence formats a single occurrence as "text (context) target".
// The display text falls back to label when empty.
func FormatOccurrence(label string, occ Occurrence) string {
	text := occ.Text
	if text == "" {
		text = label
	}
	if occ.Context != "" {
		text += " (" + occ.Context + ")"
	}
	return text + " " + occ.Target()
}
