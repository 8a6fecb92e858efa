package dtsgen

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/gnana997/ui5dts/pkg/ast"
)

const (
	wrapWidth  = 100
	topicURL   = "https://ui5.sap.com/#/topic/"
	codeFence  = "```"
	protectedN = "Do not call from applications (only from related classes in the framework)"
)

var (
	topicLink  = regexp.MustCompile(`\{@link\s+topic:([^\s}]+)`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// htmlToMarkdown converts the HTML subset used in UI5 descriptions to
// Markdown and drops every other tag. Text stays escaped; entities are
// resolved once the text is final.
func htmlToMarkdown(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	pre := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); tag {
			case "b", "strong":
				b.WriteString("**")
			case "em", "i":
				b.WriteString("*")
			case "code":
				if pre == 0 {
					b.WriteString("`")
				}
			case "pre":
				pre++
				b.WriteString("\n" + codeFence + "\n")
			case "h1", "h2", "h3", "h4":
				b.WriteString("\n\n" + strings.Repeat("#", int(tag[1]-'0')) + " ")
			case "ul", "ol":
				b.WriteString("\n")
			case "li":
				b.WriteString("\n- ")
			case "br":
				b.WriteString("\n")
			case "p":
				b.WriteString("\n\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "b", "strong":
				b.WriteString("**")
			case "em", "i":
				b.WriteString("*")
			case "code":
				if pre == 0 {
					b.WriteString("`")
				}
			case "pre":
				if pre > 0 {
					pre--
				}
				b.WriteString("\n" + codeFence + "\n")
			case "h1", "h2", "h3", "h4", "p":
				b.WriteString("\n\n")
			case "ul", "ol":
				b.WriteString("\n")
			}
		}
	}
}

// normalizeDescription turns a raw description into Markdown text.
func normalizeDescription(s string) string {
	s = htmlToMarkdown(s)
	s = topicLink.ReplaceAllString(s, "{@link "+topicURL+"$1")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// wrap breaks lines longer than width at spaces. Fenced code blocks are kept
// as they are and {@link ...} spans are never split.
func wrap(text string, width int) []string {
	var out []string
	fenced := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), codeFence) {
			fenced = !fenced
			out = append(out, line)
			continue
		}
		if fenced || len(line) <= width {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	trimmed := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(trimmed)]
	cont := indent
	if strings.HasPrefix(trimmed, "- ") {
		cont += "  "
	}

	var out []string
	cur := indent
	empty := true
	for _, word := range words(trimmed) {
		if !empty && len(cur)+1+len(word) > width {
			out = append(out, cur)
			cur = cont
			empty = true
		}
		if !empty {
			cur += " "
		}
		cur += word
		empty = false
	}
	return append(out, cur)
}

// words splits s at spaces, keeping each {@link ...} span in one word.
func words(s string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && strings.HasPrefix(s[i:], "{@link"):
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == ' ' && depth == 0:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteByte(c)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// docLines renders the body of a JSDoc comment. params and the function
// specific tags are only passed for functions.
func docLines(d *ast.Doc, params []*ast.Parameter) []string {
	if d == nil && len(params) == 0 {
		return nil
	}
	if d == nil {
		d = &ast.Doc{}
	}

	var sections [][]string
	if desc := normalizeDescription(d.Description); desc != "" {
		sections = append(sections, []string{desc})
	}

	var meta []string
	if d.Visibility == ast.VisibilityProtected {
		meta = append(meta, "@ui5-protected "+protectedN)
	}
	if d.Since != "" {
		meta = append(meta, "@since "+d.Since)
	}
	if d.Deprecated != nil {
		meta = append(meta, noteTag("@deprecated", d.Deprecated))
	}
	if d.Experimental != nil {
		meta = append(meta, noteTag("@experimental", d.Experimental))
	}
	if len(meta) > 0 {
		sections = append(sections, meta)
	}

	var tags []string
	for _, p := range params {
		if desc := normalizeDescription(p.Description); desc != "" {
			tags = append(tags, "@param "+p.Name+" "+desc)
		}
	}
	if desc := normalizeDescription(d.Returns); desc != "" {
		tags = append(tags, "@returns "+desc)
	}
	for _, t := range d.Throws {
		tag := "@throws"
		if t.Type != "" {
			tag += " {" + t.Type + "}"
		}
		if desc := normalizeDescription(t.Description); desc != "" {
			tag += " " + desc
		}
		tags = append(tags, tag)
	}
	for _, ref := range d.References {
		tags = append(tags, "@see "+normalizeDescription(ref))
	}
	if len(tags) > 0 {
		sections = append(sections, tags)
	}

	var out []string
	for i, section := range sections {
		if i > 0 {
			out = append(out, "")
		}
		for _, text := range section {
			text = html.UnescapeString(text)
			text = strings.ReplaceAll(text, "*/", "*\\/")
			out = append(out, wrap(text, wrapWidth)...)
		}
	}
	return out
}

func noteTag(tag string, n *ast.Note) string {
	if n.Since != "" {
		tag += " (since " + n.Since + ")"
	}
	if text := normalizeDescription(n.Text); text != "" {
		tag += " - " + text
	}
	return tag
}

// comment renders lines as a JSDoc block. No lines, no comment.
func comment(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, "/**")
	for _, l := range lines {
		if l == "" {
			out = append(out, " *")
			continue
		}
		out = append(out, " * "+l)
	}
	return append(out, " */")
}
