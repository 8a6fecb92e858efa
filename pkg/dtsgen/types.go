package dtsgen

import (
	"strings"

	"github.com/gnana997/ui5dts/pkg/ast"
)

// widens reports whether standard enums accept their keys in usage.
func widens(usage ast.Usage) bool {
	return usage == ast.UsageParameter || usage == ast.UsageProperty
}

// typeString renders t as TypeScript. usage is the position t occurs in and
// is passed on into unions, arrays and type arguments.
func typeString(t ast.Type, usage ast.Usage) string {
	switch v := t.(type) {
	case nil:
		return "any"
	case *ast.TypeReference:
		return referenceString(v, usage)
	case *ast.ArrayType:
		return arrayString(v, usage)
	case *ast.UnionType:
		return operands(v.Types, " | ", usage)
	case *ast.IntersectionType:
		return operands(v.Types, " & ", usage)
	case *ast.TypeLiteral:
		return literalString(v)
	case *ast.FunctionType:
		return functionTypeString(v)
	case *ast.LiteralType:
		return v.Literal
	case *ast.NativeTSTypeExpression:
		return v.Expression
	}
	return "any"
}

func referenceString(ref *ast.TypeReference, usage ast.Usage) string {
	if module, ok := strings.CutPrefix(ref.TypeName, "module:"); ok {
		return `(typeof import("` + module + `"))`
	}
	s := ref.TypeName
	if len(ref.TypeArguments) > 0 {
		args := make([]string, len(ref.TypeArguments))
		for i, a := range ref.TypeArguments {
			args[i] = typeString(a, usage)
		}
		s += "<" + strings.Join(args, ", ") + ">"
	}
	if ref.IsStandardEnum && widens(usage) {
		return "(" + s + " | keyof typeof " + ref.TypeName + ")"
	}
	return s
}

// arrayString uses the T[] form only for plain references that render
// without parentheses or type arguments.
func arrayString(a *ast.ArrayType, usage ast.Usage) string {
	elem := typeString(a.ElementType, usage)
	if ref, ok := a.ElementType.(*ast.TypeReference); ok && simpleName(ref, elem) {
		return elem + "[]"
	}
	return "Array<" + elem + ">"
}

func simpleName(ref *ast.TypeReference, rendered string) bool {
	return len(ref.TypeArguments) == 0 &&
		!strings.HasPrefix(ref.TypeName, "import(") &&
		!strings.HasPrefix(ref.TypeName, "module:") &&
		!strings.HasPrefix(rendered, "(")
}

func operands(types []ast.Type, sep string, usage ast.Usage) string {
	parts := make([]string, len(types))
	for i, t := range types {
		s := typeString(t, usage)
		switch t.(type) {
		case *ast.FunctionType:
			s = "(" + s + ")"
		case *ast.UnionType, *ast.IntersectionType:
			if sep == " & " {
				s = "(" + s + ")"
			}
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

func literalString(l *ast.TypeLiteral) string {
	if len(l.Members) == 0 {
		return "{}"
	}
	parts := make([]string, len(l.Members))
	for i, m := range l.Members {
		name := propertyName(m.Name)
		if m.Optional {
			name += "?"
		}
		parts[i] = name + ": " + typeString(m.Type, ast.UsageProperty) + ";"
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func functionTypeString(f *ast.FunctionType) string {
	var params []string
	if f.This != nil {
		params = append(params, "this: "+typeString(f.This, ast.UsageParameter))
	}
	for _, p := range f.Parameters {
		params = append(params, parameterString(p))
	}
	s := typeParameters(f.TypeParameters) + "(" + strings.Join(params, ", ") + ") => "
	if f.ReturnType == nil {
		s += "void"
	} else {
		s += typeString(f.ReturnType, ast.UsageReturnValue)
	}
	if f.IsConstructor {
		s = "new " + s
	}
	return s
}

func parameterString(p *ast.Parameter) string {
	name := parameterName(p.Name)
	if p.Rest {
		return "..." + name + ": " + typeString(p.Type, ast.UsageParameter)
	}
	if p.Optional {
		name += "?"
	}
	return name + ": " + typeString(p.Type, ast.UsageParameter)
}

func parameters(params []*ast.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = parameterString(p)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func typeParameters(tps []*ast.TypeParameter) string {
	if len(tps) == 0 {
		return ""
	}
	parts := make([]string, len(tps))
	for i, tp := range tps {
		s := tp.Name
		if tp.Constraint != nil {
			s += " extends " + typeString(tp.Constraint, ast.UsageTypeParameter)
		}
		if tp.Default != nil {
			s += " = " + typeString(tp.Default, ast.UsageTypeParameter)
		}
		parts[i] = s
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "throw": true, "true": true, "try": true,
	"typeof": true, "var": true, "void": true, "while": true, "with": true,
}

func parameterName(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// propertyName quotes member names that are not identifiers.
func propertyName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

// markerName is the nominal marker property of the interface fqn.
func markerName(fqn string) string {
	var b strings.Builder
	b.WriteString("__implements__")
	for _, c := range fqn {
		if c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
