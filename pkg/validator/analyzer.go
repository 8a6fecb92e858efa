package validator

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// FileSummary is a compact structural summary of a declaration file.
type FileSummary struct {
	Modules    []ModuleSummary `json:"modules"`
	Namespaces []string        `json:"namespaces"`
	LineCount  int             `json:"line_count"`

	// syntax holds ERROR and MISSING nodes in document order.
	syntax []Violation
}

// ModuleSummary describes one ambient module declaration.
type ModuleSummary struct {
	Name    string         `json:"name"`
	Line    int            `json:"line"`
	Imports []ImportSource `json:"imports"`
}

// ImportSource is one import statement inside a module.
type ImportSource struct {
	Source string   `json:"source"`
	Names  []string `json:"names"`
	Line   int      `json:"line"`
}

// Summarize walks tree and collects its ambient modules, top-level
// namespaces, and syntax problems.
func Summarize(tree *ts.Tree, source []byte) *FileSummary {
	s := &FileSummary{LineCount: strings.Count(string(source), "\n") + 1}
	s.walk(tree.RootNode(), source, -1, 0)
	return s
}

// walk visits node. module is the index of the enclosing ambient module or
// -1; depth counts enclosing namespace declarations.
func (s *FileSummary) walk(node *ts.Node, source []byte, module, depth int) {
	if node == nil {
		return
	}
	if node.IsMissing() {
		s.syntax = append(s.syntax, violationAt(node, RuleMissingToken, "missing "+node.Kind(), SeverityError))
		return
	}
	if node.IsError() {
		s.syntax = append(s.syntax, violationAt(node, RuleSyntax, "unexpected "+abbreviate(node.Utf8Text(source)), SeverityError))
	}

	switch node.Kind() {
	case "module":
		name := node.ChildByFieldName("name")
		if name != nil && name.Kind() == "string" && module < 0 {
			s.Modules = append(s.Modules, ModuleSummary{
				Name: stringContent(name, source),
				Line: int(node.StartPosition().Row) + 1,
			})
			module = len(s.Modules) - 1
		}
	case "internal_module":
		if name := node.ChildByFieldName("name"); name != nil && module < 0 {
			if depth == 0 {
				s.Namespaces = append(s.Namespaces, name.Utf8Text(source))
			}
			depth++
		}
	case "import_statement":
		if module >= 0 {
			s.Modules[module].Imports = append(s.Modules[module].Imports, extractImport(node, source))
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		s.walk(node.Child(i), source, module, depth)
	}
}

// extractImport reads the source and imported local names of an import
// statement.
func extractImport(node *ts.Node, source []byte) ImportSource {
	imp := ImportSource{Line: int(node.StartPosition().Row) + 1}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "string":
			imp.Source = stringContent(child, source)
		case "import_clause":
			imp.Names = importClauseNames(child, source)
		}
	}
	return imp
}

// importClauseNames returns the default, namespace, and named bindings of an
// import clause.
func importClauseNames(node *ts.Node, source []byte) []string {
	var names []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "identifier":
			names = append(names, child.Utf8Text(source))
		case "namespace_import":
			for j := uint(0); j < child.ChildCount(); j++ {
				if id := child.Child(j); id.Kind() == "identifier" {
					names = append(names, id.Utf8Text(source))
				}
			}
		case "named_imports":
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec.Kind() != "import_specifier" {
					continue
				}
				// "a as b" binds b.
				local := spec.ChildByFieldName("alias")
				if local == nil {
					local = spec.ChildByFieldName("name")
				}
				if local != nil {
					names = append(names, local.Utf8Text(source))
				}
			}
		}
	}
	return names
}

// stringContent returns the text of a string node without its quotes.
func stringContent(node *ts.Node, source []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == "string_fragment" {
			return child.Utf8Text(source)
		}
	}
	text := node.Utf8Text(source)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

func violationAt(node *ts.Node, rule, message, severity string) Violation {
	pos := node.StartPosition()
	return Violation{
		Rule:     rule,
		Message:  message,
		Severity: severity,
		Line:     int(pos.Row) + 1,
		Column:   int(pos.Column) + 1,
	}
}

// abbreviate quotes the first line of text, shortened to 40 bytes.
func abbreviate(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + "..."
	}
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return "\"" + strings.TrimSpace(text) + "\""
}
