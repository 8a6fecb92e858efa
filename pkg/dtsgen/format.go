package dtsgen

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnbalancedBraces is returned by Format when the braces of its input do
// not pair up.
var ErrUnbalancedBraces = errors.New("unbalanced braces")

const indentUnit = "  "

// Format re-indents declaration text by brace depth and collapses runs of
// blank lines. Braces in strings, template literals and comments do not
// count.
func Format(src string) (string, error) {
	var b strings.Builder
	var s braceScanner
	depth := 0
	blank := true
	for n, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			if !blank {
				b.WriteByte('\n')
			}
			blank = true
			continue
		}
		blank = false

		continued := s.comment
		leading, opens, closes := s.scan(line)
		indent := depth - leading
		if indent < 0 {
			return "", errors.Wrapf(ErrUnbalancedBraces, "line %d: unexpected }", n+1)
		}
		b.WriteString(strings.Repeat(indentUnit, indent))
		if continued && strings.HasPrefix(line, "*") {
			b.WriteByte(' ')
		}
		b.WriteString(line)
		b.WriteByte('\n')

		depth += opens - closes
		if depth < 0 {
			return "", errors.Wrapf(ErrUnbalancedBraces, "line %d: unexpected }", n+1)
		}
	}
	if depth != 0 {
		return "", errors.Wrapf(ErrUnbalancedBraces, "%d unclosed {", depth)
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// braceScanner counts braces line by line. Block comments may span lines.
type braceScanner struct {
	comment bool
}

// scan returns the number of } before any other code on the line and the
// total number of { and } on it.
func (s *braceScanner) scan(line string) (leading, opens, closes int) {
	code := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if s.comment {
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				s.comment = false
				i++
			}
			continue
		}
		switch c {
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return leading, opens, closes
			}
			if i+1 < len(line) && line[i+1] == '*' {
				s.comment = true
				i++
				continue
			}
		case '"', '\'', '`':
			i = skipQuoted(line, i)
		case '{':
			opens++
		case '}':
			closes++
			if !code {
				leading++
				continue
			}
		case ' ', '\t':
			continue
		}
		code = true
	}
	return leading, opens, closes
}

// skipQuoted returns the index of the quote closing the one at start, or the
// end of line.
func skipQuoted(line string, start int) int {
	q := line[start]
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case q:
			return i
		}
	}
	return len(line) - 1
}
