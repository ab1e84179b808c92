// Package js decodes and encodes the JavaScript search tables that
// documentation generators write next to their HTML output.
//
// Only the literal subset those files use is understood: var/let/const
// declarations whose values are arrays, objects, strings, numbers, booleans
// and null. Strings may be single or double quoted and may contain raw
// newlines, which generated files do.
package js

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/doxindex"
	"github.com/tdewolff/parse/v2"
	jslex "github.com/tdewolff/parse/v2/js"
)

// object is a decoded object literal with its keys in source order.
type object struct {
	keys   []string
	values map[string]any
}

// declaration is a single top-level variable binding.
type declaration struct {
	name  string
	value any
}

// token is a significant lexer token and its byte offset in the source.
type token struct {
	tt     jslex.TokenType
	text   string
	offset int
	eof    bool
}

// decoder is a recursive descent parser over the tokens of a source buffer.
// Decoded values are string, float64, bool, nil, []any and *object.
type decoder struct {
	src   []byte
	lexer *jslex.Lexer
	pos   int
	tok   token
}

func newDecoder(src string) *decoder {
	// One spare byte of capacity lets the lexer terminate any suffix of src
	// in place.
	buf := make([]byte, len(src), len(src)+1)
	copy(buf, src)
	d := &decoder{src: buf}
	if strings.HasPrefix(src, "\uFEFF") {
		d.pos = len("\uFEFF")
	}
	d.restart()
	return d
}

// restart lexes the source again from the current position.
func (d *decoder) restart() {
	d.lexer = jslex.NewLexer(parse.NewInputBytes(d.src[d.pos:]))
}

// errorAt returns an EMALFORMED error annotated with the line and column of
// the byte offset.
func (d *decoder) errorAt(offset int, format string, args ...any) error {
	before := d.src[:offset]
	line := 1 + strings.Count(string(before), "\n")
	lineStart := 0
	if i := strings.LastIndexByte(string(before), '\n'); i >= 0 {
		lineStart = i + 1
	}
	col := 1 + utf8.RuneCount(before[lineStart:])
	return doxindex.Errorf(doxindex.EMALFORMED, "line %d, column %d: %s", line, col, fmt.Sprintf(format, args...))
}

func (d *decoder) errorf(format string, args ...any) error {
	return d.errorAt(d.tok.offset, format, args...)
}

// next advances to the next token that is not whitespace or a comment.
func (d *decoder) next() error {
	for {
		tt, data := d.lexer.Next()
		switch tt {
		case jslex.ErrorToken:
			if errors.Is(d.lexer.Err(), io.EOF) {
				d.tok = token{offset: d.pos, eof: true}
				return nil
			}
			if d.pos < len(d.src) && (d.src[d.pos] == '\'' || d.src[d.pos] == '"') {
				return d.rawString()
			}
			r, _ := utf8.DecodeRune(d.src[d.pos:])
			return d.errorAt(d.pos, "unexpected %q", r)
		case jslex.WhitespaceToken, jslex.LineTerminatorToken, jslex.CommentToken, jslex.CommentLineTerminatorToken:
			d.pos += len(data)
		default:
			d.tok = token{tt: tt, text: string(data), offset: d.pos}
			d.pos += len(data)
			return nil
		}
	}
}

// rawString consumes a string literal holding raw line terminators, which
// the lexer rejects, and resumes lexing after it.
func (d *decoder) rawString() error {
	start := d.pos
	quote := d.src[start]
	i := start + 1
	for {
		if i >= len(d.src) {
			return d.errorAt(start, "unterminated string")
		}
		c := d.src[i]
		if c == quote {
			break
		}
		if c == '\\' {
			i++
		}
		i++
	}
	d.tok = token{tt: jslex.StringToken, text: string(d.src[start : i+1]), offset: start}
	d.pos = i + 1
	d.restart()
	return nil
}

func (d *decoder) is(tt jslex.TokenType) bool {
	return !d.tok.eof && d.tok.tt == tt
}

// expect consumes a token of type tt.
func (d *decoder) expect(tt jslex.TokenType, want string) error {
	if err := d.next(); err != nil {
		return err
	}
	if d.tok.eof {
		return d.errorf("unexpected end of input, want %q", want)
	}
	if d.tok.tt != tt {
		return d.errorf("unexpected %q, want %q", d.tok.text, want)
	}
	return nil
}

// declarations decodes every top-level declaration in the source.
func (d *decoder) declarations() ([]declaration, error) {
	var decls []declaration
	for {
		if err := d.next(); err != nil {
			return nil, err
		}
		if d.tok.eof {
			return decls, nil
		}
		if d.is(jslex.SemicolonToken) {
			continue
		}

		name, err := d.identifier()
		if err != nil {
			return nil, err
		}
		if name == "var" || name == "let" || name == "const" {
			if err := d.next(); err != nil {
				return nil, err
			}
			if name, err = d.identifier(); err != nil {
				return nil, err
			}
		}

		if err := d.expect(jslex.EqToken, "="); err != nil {
			return nil, err
		}
		if err := d.next(); err != nil {
			return nil, err
		}
		value, err := d.value()
		if err != nil {
			return nil, err
		}
		decls = append(decls, declaration{name: name, value: value})
	}
}

// identifier returns the current token as a name.
func (d *decoder) identifier() (string, error) {
	if d.tok.eof {
		return "", d.errorf("unexpected end of input, want identifier")
	}
	if !isIdentifier(d.tok.text) {
		return "", d.errorf("unexpected %q, want identifier", d.tok.text)
	}
	return d.tok.text, nil
}

// value decodes the literal starting at the current token.
func (d *decoder) value() (any, error) {
	if d.tok.eof {
		return nil, d.errorf("unexpected end of input, want value")
	}

	switch d.tok.tt {
	case jslex.OpenBracketToken:
		return d.array()
	case jslex.OpenBraceToken:
		return d.object()
	case jslex.StringToken:
		return d.string()
	case jslex.SubToken, jslex.AddToken:
		negative := d.tok.tt == jslex.SubToken
		if err := d.next(); err != nil {
			return nil, err
		}
		n, err := d.number()
		if err != nil {
			return nil, err
		}
		if negative {
			n = -n
		}
		return n, nil
	case jslex.DecimalToken, jslex.HexadecimalToken:
		return d.number()
	}

	switch d.tok.text {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	}
	if isIdentifier(d.tok.text) {
		return nil, d.errorf("unexpected identifier %q", d.tok.text)
	}
	return nil, d.errorf("unexpected %q", d.tok.text)
}

func (d *decoder) array() ([]any, error) {
	items := []any{}
	for {
		if err := d.next(); err != nil {
			return nil, err
		}
		if d.tok.eof {
			return nil, d.errorf("unterminated array")
		}
		if d.is(jslex.CloseBracketToken) {
			return items, nil
		}

		item, err := d.value()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if err := d.next(); err != nil {
			return nil, err
		}
		switch {
		case d.tok.eof:
			return nil, d.errorf("unterminated array")
		case d.is(jslex.CloseBracketToken):
			return items, nil
		case !d.is(jslex.CommaToken):
			return nil, d.errorf("unexpected %q in array, want ',' or ']'", d.tok.text)
		}
	}
}

func (d *decoder) object() (*object, error) {
	obj := &object{values: make(map[string]any)}
	for {
		if err := d.next(); err != nil {
			return nil, err
		}
		if d.tok.eof {
			return nil, d.errorf("unterminated object")
		}
		if d.is(jslex.CloseBraceToken) {
			return obj, nil
		}

		key, err := d.objectKey()
		if err != nil {
			return nil, err
		}
		if err := d.expect(jslex.ColonToken, ":"); err != nil {
			return nil, err
		}
		if err := d.next(); err != nil {
			return nil, err
		}
		value, err := d.value()
		if err != nil {
			return nil, err
		}
		if _, dup := obj.values[key]; !dup {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = value

		if err := d.next(); err != nil {
			return nil, err
		}
		switch {
		case d.tok.eof:
			return nil, d.errorf("unterminated object")
		case d.is(jslex.CloseBraceToken):
			return obj, nil
		case !d.is(jslex.CommaToken):
			return nil, d.errorf("unexpected %q in object, want ',' or '}'", d.tok.text)
		}
	}
}

func (d *decoder) objectKey() (string, error) {
	switch d.tok.tt {
	case jslex.StringToken:
		return d.string()
	case jslex.DecimalToken:
		if isDigits(d.tok.text) {
			return d.tok.text, nil
		}
		return "", d.errorf("unexpected %q, want object key", d.tok.text)
	default:
		return d.identifier()
	}
}

func (d *decoder) number() (float64, error) {
	if d.tok.eof {
		return 0, d.errorf("unexpected end of input, want number")
	}
	text := d.tok.text
	switch d.tok.tt {
	case jslex.HexadecimalToken:
		n, err := strconv.ParseInt(text[2:], 16, 64)
		if err != nil {
			return 0, d.errorf("invalid number %q", text)
		}
		return float64(n), nil
	case jslex.DecimalToken:
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, d.errorf("invalid number %q", text)
		}
		return n, nil
	}
	return 0, d.errorf("unexpected %q, want number", text)
}

// string decodes the current string token.
func (d *decoder) string() (string, error) {
	text := d.tok.text
	if len(text) < 2 || text[len(text)-1] != text[0] {
		return "", d.errorf("unterminated string")
	}
	s, err := unquote(text[1 : len(text)-1])
	if err != nil {
		return "", d.errorf("%v", err)
	}
	return s, nil
}

// unquote decodes the escape sequences of a string literal body.
func unquote(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.New("unterminated string")
		}
		switch c := s[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\n':
			// Line continuation.
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			r, err := hexRune(s, i+1, 2)
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			i += 2
		case 'u':
			r, n, err := unicodeEscape(s[i+1:])
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			i += n
		default:
			// \' \" \\ \/ and any other character stand for themselves.
			sb.WriteByte(c)
		}
	}
	return sb.String(), nil
}

// unicodeEscape decodes the digits following \u and returns the rune and
// the number of bytes consumed.
func unicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, errors.New("invalid unicode escape")
		}
		r, err := hexRune(s, 1, end-1)
		if err != nil {
			return 0, 0, err
		}
		return r, end + 1, nil
	}

	r, err := hexRune(s, 0, 4)
	if err != nil {
		return 0, 0, err
	}
	// Combine UTF-16 surrogate pairs written as two escapes.
	if 0xD800 <= r && r < 0xDC00 && strings.HasPrefix(s[4:], "\\u") {
		if lo, err := hexRune(s, 6, 4); err == nil && 0xDC00 <= lo && lo < 0xE000 {
			return (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000, 10, nil
		}
	}
	if !utf8.ValidRune(r) {
		return utf8.RuneError, 4, nil
	}
	return r, 4, nil
}

func hexRune(s string, start, n int) (rune, error) {
	if start+n > len(s) {
		return 0, errors.New("truncated escape sequence")
	}
	v, err := strconv.ParseUint(s[start:start+n], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid escape sequence %q", s[start:start+n])
	}
	return rune(v), nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || (i > 0 && '0' <= c && c <= '9') {
			continue
		}
		return false
	}
	return true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
