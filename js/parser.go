package js

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fwojciec/doxindex"
	"golang.org/x/net/html"
)

// TableName is the variable a generated search table is bound to.
const TableName = "searchData"

// Variables declared by searchdata.js.
const (
	sectionLettersName = "indexSectionsWithContent"
	sectionNamesName   = "indexSectionNames"
	sectionLabelsName  = "indexSectionLabels"
)

// Ensure Parser implements the parser interfaces at compile time.
var (
	_ doxindex.IndexParser   = (*Parser)(nil)
	_ doxindex.SectionParser = (*Parser)(nil)
)

// Parser decodes search tables and section listings.
type Parser struct {
	// Options are applied to every Index the parser builds.
	Options []doxindex.IndexOption
}

// NewParser creates a new Parser that builds indexes with opts.
func NewParser(opts ...doxindex.IndexOption) *Parser {
	return &Parser{Options: opts}
}

// ParseIndex decodes a complete search table.
// The table is read from the searchData declaration, or from the only
// declaration in the source when it is named differently.
func (p *Parser) ParseIndex(ctx context.Context, r io.Reader) (*doxindex.Index, error) {
	decls, err := p.parse(ctx, r)
	if err != nil {
		return nil, err
	}

	value, err := tableValue(decls)
	if err != nil {
		return nil, err
	}

	entries, err := decodeEntries(ctx, value)
	if err != nil {
		return nil, err
	}

	return doxindex.NewIndex(entries, p.Options...)
}

// ParseSections decodes the section listing written to searchdata.js.
// Sections are returned ordered by ID.
func (p *Parser) ParseSections(ctx context.Context, r io.Reader) ([]doxindex.SearchSection, error) {
	decls, err := p.parse(ctx, r)
	if err != nil {
		return nil, err
	}

	vars := make(map[string]any, len(decls))
	for _, decl := range decls {
		vars[decl.name] = decl.value
	}

	names, err := stringObject(vars, sectionNamesName, true)
	if err != nil {
		return nil, err
	}
	letters, err := stringObject(vars, sectionLettersName, true)
	if err != nil {
		return nil, err
	}
	labels, err := stringObject(vars, sectionLabelsName, false)
	if err != nil {
		return nil, err
	}

	sections := make([]doxindex.SearchSection, 0, len(names))
	for id, name := range names {
		sections = append(sections, doxindex.SearchSection{
			ID:      id,
			Name:    name,
			Label:   html.UnescapeString(labels[id]),
			Letters: letters[id],
		})
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].ID < sections[j].ID })

	return sections, nil
}

func (p *Parser) parse(ctx context.Context, r io.Reader) ([]declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read search table: %w", err)
	}

	return newDecoder(string(src)).declarations()
}

func tableValue(decls []declaration) (any, error) {
	for _, decl := range decls {
		if decl.name == TableName {
			return decl.value, nil
		}
	}
	if len(decls) == 1 {
		return decls[0].value, nil
	}
	return nil, doxindex.Errorf(doxindex.EMALFORMED, "no %s declaration found", TableName)
}

// decodeEntries decodes [key, [label, occurrence...]] tuples.
func decodeEntries(ctx context.Context, value any) ([]*doxindex.Entry, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "search table must be an array, got %s", typeName(value))
	}

	entries := make([]*doxindex.Entry, 0, len(items))
	for i, item := range items {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		entry, err := decodeEntry(item)
		if err != nil {
			return nil, doxindex.Errorf(doxindex.EMALFORMED, "entry %d: %s", i, doxindex.ErrorMessage(err))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeEntry(item any) (*doxindex.Entry, error) {
	tuple, ok := item.([]any)
	if !ok || len(tuple) != 2 {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "want [key, [label, occurrence...]], got %s", describe(item))
	}

	key, ok := tuple[0].(string)
	if !ok {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "key must be a string, got %s", typeName(tuple[0]))
	}

	body, ok := tuple[1].([]any)
	if !ok || len(body) < 2 {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "%q: want [label, occurrence...], got %s", key, describe(tuple[1]))
	}

	rawLabel, ok := body[0].(string)
	if !ok {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "%q: label must be a string, got %s", key, typeName(body[0]))
	}
	label := html.UnescapeString(rawLabel)

	entry := &doxindex.Entry{Key: key, Label: label}
	if err := decodeOccurrences(entry, body[1:]); err != nil {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "%q: %s", key, doxindex.ErrorMessage(err))
	}
	return entry, nil
}

// decodeOccurrences appends each occurrence tuple in items to entry.
// An item that is itself a sequence of tuples is flattened.
func decodeOccurrences(entry *doxindex.Entry, items []any) error {
	for _, item := range items {
		tuple, ok := item.([]any)
		if !ok {
			return doxindex.Errorf(doxindex.EMALFORMED, "occurrence %d: must be an array, got %s", len(entry.Occurrences), typeName(item))
		}
		if len(tuple) > 0 {
			if _, nested := tuple[0].([]any); nested {
				if err := decodeOccurrences(entry, tuple); err != nil {
					return err
				}
				continue
			}
		}

		occ, err := decodeOccurrence(entry.Label, tuple)
		if err != nil {
			return doxindex.Errorf(doxindex.EMALFORMED, "occurrence %d: %s", len(entry.Occurrences), doxindex.ErrorMessage(err))
		}
		entry.Occurrences = append(entry.Occurrences, occ)
	}
	return nil
}

// decodeOccurrence decodes [url, context] or [url, flag, context].
func decodeOccurrence(label string, tuple []any) (doxindex.Occurrence, error) {
	var target, scope, flag any
	switch len(tuple) {
	case 2:
		target, scope = tuple[0], tuple[1]
	case 3:
		target, flag, scope = tuple[0], tuple[1], tuple[2]
	default:
		return doxindex.Occurrence{}, doxindex.Errorf(doxindex.EMALFORMED, "want [url, context] or [url, flag, context], got %d elements", len(tuple))
	}

	rawURL, ok := target.(string)
	if !ok {
		return doxindex.Occurrence{}, doxindex.Errorf(doxindex.EMALFORMED, "target URL must be a string, got %s", typeName(target))
	}
	if rawURL == "" {
		return doxindex.Occurrence{}, doxindex.Errorf(doxindex.EMALFORMED, "target URL required")
	}

	rawScope, ok := scope.(string)
	if !ok {
		return doxindex.Occurrence{}, doxindex.Errorf(doxindex.EMALFORMED, "context must be a string, got %s", typeName(scope))
	}

	parent := true
	switch f := flag.(type) {
	case nil:
	case float64:
		parent = f != 0
	case bool:
		parent = f
	default:
		return doxindex.Occurrence{}, doxindex.Errorf(doxindex.EMALFORMED, "flag must be a number, got %s", typeName(flag))
	}

	u, anchor := doxindex.SplitTarget(rawURL)
	if u == "" {
		return doxindex.Occurrence{}, doxindex.Errorf(doxindex.EMALFORMED, "target URL required")
	}
	text, context := doxindex.SplitScope(label, html.UnescapeString(rawScope))

	return doxindex.Occurrence{
		Text:    text,
		URL:     u,
		Anchor:  anchor,
		Context: context,
		Parent:  parent,
	}, nil
}

// stringObject decodes an object literal with numeric keys and string values.
func stringObject(vars map[string]any, name string, required bool) (map[int]string, error) {
	value, ok := vars[name]
	if !ok {
		if required {
			return nil, doxindex.Errorf(doxindex.EMALFORMED, "no %s declaration found", name)
		}
		return map[int]string{}, nil
	}

	obj, ok := value.(*object)
	if !ok {
		return nil, doxindex.Errorf(doxindex.EMALFORMED, "%s must be an object, got %s", name, typeName(value))
	}

	result := make(map[int]string, len(obj.keys))
	for _, k := range obj.keys {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, doxindex.Errorf(doxindex.EMALFORMED, "%s: key %q is not a section number", name, k)
		}
		s, ok := obj.values[k].(string)
		if !ok {
			return nil, doxindex.Errorf(doxindex.EMALFORMED, "%s: value for %d must be a string, got %s", name, id, typeName(obj.values[k]))
		}
		result[id] = s
	}
	return result, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case *object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// describe names the type of v and, for arrays, its length.
func describe(v any) string {
	if items, ok := v.([]any); ok {
		return fmt.Sprintf("array of %d elements", len(items))
	}
	return typeName(v)
}
