package doxindex

import (
	"strings"
)

const hexDigits = "0123456789abcdef"

// NormalizeKey encodes a label the way search tables key their entries.
// ASCII letters and digits are kept, every other ASCII byte is escaped as
// "_" followed by two lowercase hex digits, and bytes of multi-byte UTF-8
// sequences pass through. The result is lowercased.
//
// Example: "Find Package Modules" → "find_20package_20modules"
func NormalizeKey(label string) string {
	var sb strings.Builder
	sb.Grow(len(label))
	for i := 0; i < len(label); i++ {
		c := label[i]
		if c >= 0x80 || isAlnum(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('_')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	return strings.ToLower(sb.String())
}

// IsKey reports whether s, once lowercased, is already in key form or is a
// prefix of a string in key form. A trailing incomplete escape ("_" or "_6")
// is accepted.
func IsKey(s string) bool {
	s = strings.ToLower(s)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 0x80 || isAlnum(c):
		case c == '_':
			end := min(i+3, len(s))
			for j := i + 1; j < end; j++ {
				if !isHex(s[j]) {
					return false
				}
			}
			i = end - 1
		default:
			return false
		}
	}
	return true
}

// Query is a compiled lookup query. It matches keys that start with the
// normalized form of the raw query and, when the raw query is already in key
// form, keys that start with the lowercased raw query.
type Query struct {
	raw      string
	prefixes []string
}

// ParseQuery compiles a raw query string. Matching is case-insensitive.
func ParseQuery(q string) Query {
	normalized := NormalizeKey(q)
	prefixes := []string{normalized}
	if IsKey(q) {
		if lowered := strings.ToLower(q); lowered != normalized {
			prefixes = append(prefixes, lowered)
		}
	}
	return Query{raw: q, prefixes: prefixes}
}

// String returns the raw query.
func (q Query) String() string { return q.raw }

// Prefixes returns the key prefixes the query matches. The slice must not be modified.
func (q Query) Prefixes() []string { return q.prefixes }

// Match reports whether key matches the query.
func (q Query) Match(key string) bool {
	for _, p := range q.prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the query matches every key.
func (q Query) IsEmpty() bool {
	return q.raw == ""
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}
