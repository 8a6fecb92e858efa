package typeparser

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokName
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind  tokenKind
	value string
	pos   int
}

func (t token) is(punct string) bool {
	return t.kind == tokPunct && t.value == punct
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return "'" + t.value + "'"
}

const modulePrefix = "module"

// lex splits a type expression into tokens.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++

		case strings.HasPrefix(src[i:], "..."):
			toks = append(toks, token{kind: tokPunct, value: "...", pos: i})
			i += 3

		case strings.ContainsRune("|()[]<>{},:=?!*", c):
			toks = append(toks, token{kind: tokPunct, value: string(c), pos: i})
			i++

		case c == '"' || c == '\'':
			end := i + 1
			for end < len(src) && rune(src[end]) != c {
				if src[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(src) {
				return nil, errors.Wrapf(ErrSyntax, "unterminated string literal at offset %d", i)
			}
			toks = append(toks, token{kind: tokString, value: src[i+1 : end], pos: i})
			i = end + 1

		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(rune(src[i+1]))):
			start := i
			i++
			for i < len(src) && (isDigit(rune(src[i])) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{kind: tokNumber, value: src[start:i], pos: start})

		case isNameStart(c):
			start := i
			i++
			for i < len(src) {
				ch := rune(src[i])
				name := src[start:i]
				if isNameStart(ch) || isDigit(ch) || ch == '.' || ch == '/' || ch == '~' {
					i++
					continue
				}
				if ch == ':' && name == modulePrefix {
					i++
					continue
				}
				if ch == '-' && strings.HasPrefix(name, modulePrefix+":") {
					i++
					continue
				}
				break
			}
			// "Array.<T>" is the JSDoc spelling of "Array<T>".
			name := strings.TrimSuffix(src[start:i], ".")
			toks = append(toks, token{kind: tokName, value: name, pos: start})

		default:
			return nil, errors.Wrapf(ErrSyntax, "unexpected character %q at offset %d", c, i)
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isNameStart(c rune) bool {
	return c == '_' || c == '$' || unicode.IsLetter(c)
}
