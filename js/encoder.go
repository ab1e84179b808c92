package js

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/fwojciec/doxindex"
	"golang.org/x/net/html"
)

// Ensure Encoder implements doxindex.IndexEncoder at compile time.
var _ doxindex.IndexEncoder = (*Encoder)(nil)

// Encoder writes search tables in the format generators emit.
type Encoder struct {
	// Name is the variable the table is bound to. Defaults to TableName.
	Name string
}

// NewEncoder returns an Encoder for tables bound to TableName.
func NewEncoder() *Encoder {
	return &Encoder{Name: TableName}
}

// Encode writes every entry of idx to w as a complete table.
func (enc *Encoder) Encode(w io.Writer, idx *doxindex.Index) error {
	return enc.EncodeEntries(w, idx.Entries())
}

// EncodeEntries writes entries to w as a complete table.
//
// Example output:
//
//	var searchData=
//	[
//	  ['fail',['fail',['../basistest_8sh.html#a1',1,'basistest.sh']]],
//	];
func (enc *Encoder) EncodeEntries(w io.Writer, entries iter.Seq[*doxindex.Entry]) error {
	name := enc.Name
	if name == "" {
		name = TableName
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "var %s=\n[\n", name)
	for e := range entries {
		bw.WriteString("  [")
		writeString(bw, e.Key)
		bw.WriteString(",[")
		writeString(bw, escapeHTML(e.Label))
		for i := range e.Occurrences {
			occ := &e.Occurrences[i]
			bw.WriteString(",[")
			writeString(bw, occ.Target())
			if occ.Parent {
				bw.WriteString(",1,")
			} else {
				bw.WriteString(",0,")
			}
			writeString(bw, escapeHTML(occ.Scope(e.Label)))
			bw.WriteByte(']')
		}
		bw.WriteString("]],\n")
	}
	bw.WriteString("];\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write search table: %w", err)
	}
	return nil
}

// EncodeSections writes the section listing of a search directory to w.
func (enc *Encoder) EncodeSections(w io.Writer, sections []doxindex.SearchSection) error {
	bw := bufio.NewWriter(w)

	writeObject := func(name string, value func(doxindex.SearchSection) string) {
		fmt.Fprintf(bw, "var %s =\n{\n", name)
		for i, s := range sections {
			fmt.Fprintf(bw, "  %d: %s", s.ID, strconv.Quote(value(s)))
			if i < len(sections)-1 {
				bw.WriteByte(',')
			}
			bw.WriteByte('\n')
		}
		bw.WriteString("};\n\n")
	}
	writeObject(sectionLettersName, func(s doxindex.SearchSection) string { return s.Letters })
	writeObject(sectionNamesName, func(s doxindex.SearchSection) string { return s.Name })
	writeObject(sectionLabelsName, func(s doxindex.SearchSection) string { return escapeHTML(s.Label) })

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write search sections: %w", err)
	}
	return nil
}

// escapeHTML escapes s for a search table string, writing non-breaking
// spaces as numeric references.
func escapeHTML(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\u00a0", "&#160;")
}

// writeString writes s as a single-quoted string literal.
func writeString(bw *bufio.Writer, s string) {
	bw.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			bw.WriteString(`\\`)
		case '\'':
			bw.WriteString(`\'`)
		case '\n':
			bw.WriteString(`\n`)
		case '\r':
			bw.WriteString(`\r`)
		default:
			bw.WriteByte(c)
		}
	}
	bw.WriteByte('\'')
}
