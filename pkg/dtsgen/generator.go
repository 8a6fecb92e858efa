// Package dtsgen renders the declaration IR as TypeScript declaration text.
//
// Text is produced flat, one declaration per line, and then indented by
// Format. When formatting fails the flat text is returned unchanged.
package dtsgen

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gnana997/ui5dts/pkg/ast"
	"github.com/gnana997/ui5dts/pkg/astbuild"
	"github.com/gnana997/ui5dts/pkg/genctx"
)

// Generate renders res. The text starts with the library version comment
// and ends with the ambient sap namespace.
func Generate(ctx *genctx.Context, res *astbuild.Result) string {
	g := newWriter(ctx)
	g.line("// For Library Version: " + ctx.Version)
	g.blank()
	for _, m := range res.Modules {
		g.module(m)
		g.blank()
	}
	for _, ns := range res.Globals {
		g.ambient(ns)
		g.blank()
	}
	return g.finish()
}

// RenderDeclaration renders a single declaration the way it appears inside a
// namespace block.
func RenderDeclaration(ctx *genctx.Context, d ast.Declaration) string {
	g := newWriter(ctx)
	g.declaration(d, "")
	return g.finish()
}

type writer struct {
	ctx    *genctx.Context
	logger *slog.Logger
	b      strings.Builder
}

func newWriter(ctx *genctx.Context) *writer {
	return &writer{ctx: ctx, logger: ctx.Log().With("phase", "dtsgen")}
}

func (g *writer) line(s string) {
	g.b.WriteString(s)
	g.b.WriteByte('\n')
}

func (g *writer) blank() { g.b.WriteByte('\n') }

func (g *writer) finish() string {
	raw := g.b.String()
	formatted, err := Format(raw)
	if err != nil {
		g.logger.Warn("formatting failed, emitting unformatted text", "error", err)
		return raw
	}
	return formatted
}

func (g *writer) doc(d *ast.Doc, params []*ast.Parameter) {
	for _, l := range comment(docLines(d, params)) {
		g.line(l)
	}
}

// ignore emits a @ts-ignore comment for declarations listed in the
// directives.
func (g *writer) ignore(fqn string) {
	if fqn == "" {
		return
	}
	reason, ok := g.ctx.IgnoreReason(fqn)
	if !ok {
		return
	}
	if reason != "" {
		g.line("// @ts-ignore - " + reason)
		return
	}
	g.line("// @ts-ignore")
}

func (g *writer) module(m *ast.Module) {
	g.line(`declare module "` + m.Name + `" {`)
	for _, imp := range m.Imports {
		g.line(importStatement(imp))
	}
	if len(m.Imports) > 0 {
		g.blank()
	}
	for i, e := range m.Exports {
		g.export(e, lastDefault(m.Exports, i))
		if i < len(m.Exports)-1 {
			g.blank()
		}
	}
	g.line("}")
}

// lastDefault reports whether exports[i] is the last default export of its
// name, which is where overloaded defaults get their export statement.
func lastDefault(exports []*ast.Export, i int) bool {
	if !exports[i].AsDefault {
		return false
	}
	for _, e := range exports[i+1:] {
		if e.AsDefault && e.Name == exports[i].Name {
			return false
		}
	}
	return true
}

func importStatement(imp *ast.Import) string {
	var parts []string
	if imp.DefaultName != "" {
		parts = append(parts, imp.DefaultName)
	}
	if len(imp.Named) > 0 {
		names := make([]string, len(imp.Named))
		for i, n := range imp.Named {
			names[i] = n.Imported
			if n.Local != "" && n.Local != n.Imported {
				names[i] += " as " + n.Local
			}
		}
		parts = append(parts, "{ "+strings.Join(names, ", ")+" }")
	}
	return "import " + strings.Join(parts, ", ") + ` from "` + imp.Module + `";`
}

func (g *writer) export(e *ast.Export, closeDefault bool) {
	if !e.AsDefault {
		if iface, ok := e.Expression.(*ast.Interface); ok && iface.StaticObject {
			g.declaration(iface, "")
			return
		}
		g.declaration(e.Expression, "export ")
		return
	}
	switch d := e.Expression.(type) {
	case *ast.Class, *ast.Interface:
		g.declaration(d, "export default ")
	default:
		g.declaration(d, "")
		if closeDefault {
			g.line("export default " + d.DeclName() + ";")
		}
	}
}

// ambient renders a global namespace root.
func (g *writer) ambient(ns *ast.Namespace) {
	g.doc(ns.Doc, nil)
	g.line("declare namespace " + ns.Name + " {")
	g.members(ns)
	g.line("}")
}

func (g *writer) members(ns *ast.Namespace) {
	for i, d := range ns.Members() {
		if i > 0 {
			g.blank()
		}
		g.declaration(d, "export ")
	}
}

// declaration renders d with prefix in front of its keyword.
func (g *writer) declaration(d ast.Declaration, prefix string) {
	switch v := d.(type) {
	case *ast.Namespace:
		if v.IsEmpty() {
			return
		}
		g.doc(v.Doc, nil)
		g.line(prefix + "namespace " + v.Name + " {")
		g.members(v)
		g.line("}")
	case *ast.Class:
		g.class(v, prefix)
	case *ast.Interface:
		g.iface(v, prefix)
	case *ast.Enum:
		g.enum(v, prefix)
	case *ast.TypeAliasDeclaration:
		g.doc(v.Doc, nil)
		g.ignore(v.FQN)
		g.line(prefix + "type " + v.Name + typeParameters(v.TypeParameters) + " = " + typeString(v.Type, ast.UsageAlias) + ";")
	case *ast.FunctionDesc:
		g.doc(v.Doc, v.Parameters)
		g.ignore(v.FQN)
		g.line(prefix + "function " + v.Name + signature(v))
	case *ast.Variable:
		g.doc(v.Doc, nil)
		g.ignore(v.FQN)
		keyword, usage := "let ", ast.UsageProperty
		if v.Const {
			keyword, usage = "const ", ast.UsageConst
		}
		g.line(prefix + keyword + v.Name + ": " + typeString(v.Type, usage) + ";")
	}
}

func (g *writer) class(c *ast.Class, prefix string) {
	g.doc(c.Doc, nil)
	g.ignore(c.FQN)
	head := prefix
	if c.Abstract {
		head += "abstract "
	}
	head += "class " + c.Name + typeParameters(c.TypeParameters)
	if c.Extends != nil {
		head += " extends " + typeString(c.Extends, ast.UsageExtends)
	}
	if len(c.Implements) > 0 {
		impls := make([]string, len(c.Implements))
		for i, t := range c.Implements {
			impls[i] = typeString(t, ast.UsageImplements)
		}
		head += " implements " + strings.Join(impls, ", ")
	}
	g.line(head + " {")
	for _, fqn := range c.ImplementsFQName {
		g.line(markerName(fqn) + ": boolean;")
	}
	for _, ctor := range c.Constructors {
		g.method(ctor, true)
	}
	for _, p := range c.Props {
		g.property(p, true)
	}
	for _, m := range c.Methods {
		g.method(m, true)
	}
	g.line("}")
}

func (g *writer) iface(i *ast.Interface, prefix string) {
	g.doc(i.Doc, nil)
	g.ignore(i.FQN)
	head := prefix + "interface " + i.Name + typeParameters(i.TypeParameters)
	if len(i.Extends) > 0 {
		ext := make([]string, len(i.Extends))
		for n, t := range i.Extends {
			ext[n] = typeString(t, ast.UsageExtends)
		}
		head += " extends " + strings.Join(ext, ", ")
	}
	g.line(head + " {")
	if i.Nominal {
		g.line(markerName(i.FQN) + ": boolean;")
	}
	for _, p := range i.Props {
		g.property(p, false)
	}
	for _, m := range i.Methods {
		g.method(m, false)
	}
	g.line("}")
}

func (g *writer) enum(e *ast.Enum, prefix string) {
	g.doc(e.Doc, nil)
	g.ignore(e.FQN)
	if e.AliasFor != nil {
		target := typeString(e.AliasFor, ast.UsageAlias)
		g.line(prefix + "const " + e.Name + ": typeof " + target + ";")
		g.doc(e.Doc, nil)
		g.line(prefix + "type " + e.Name + " = " + target + ";")
		return
	}
	g.line(prefix + "enum " + e.Name + " {")
	for _, v := range e.Values {
		g.doc(v.Doc, nil)
		g.line(propertyName(v.Name) + " = " + enumValue(v) + ",")
	}
	g.line("}")
}

func enumValue(v *ast.Variable) string {
	switch x := v.Value.(type) {
	case nil:
		return strconv.Quote(v.Name)
	case string:
		return strconv.Quote(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.Quote(strconv.FormatBool(x))
	}
	return strconv.Quote(v.Name)
}

func (g *writer) property(p *ast.Variable, inClass bool) {
	g.doc(p.Doc, nil)
	g.ignore(p.FQN)
	var mods string
	if inClass {
		if p.Visibility == ast.VisibilityProtected {
			mods += "protected "
		}
		if p.Static {
			mods += "static "
		}
	}
	if p.Readonly {
		mods += "readonly "
	}
	name := propertyName(p.Name)
	if p.Optional {
		name += "?"
	}
	g.line(mods + name + ": " + typeString(p.Type, ast.UsageProperty) + ";")
}

func (g *writer) method(fn *ast.FunctionDesc, inClass bool) {
	g.doc(fn.Doc, fn.Parameters)
	g.ignore(fn.FQN)
	var mods string
	if inClass {
		if fn.Visibility == ast.VisibilityProtected {
			mods += "protected "
		}
		if fn.Static {
			mods += "static "
		}
		if fn.Abstract {
			mods += "abstract "
		}
	}
	name := propertyName(fn.Name)
	if fn.IsConstructor {
		name = "constructor"
	}
	if fn.Optional {
		name += "?"
	}
	g.line(mods + name + signature(fn))
}

// signature renders type parameters, parameters and return type of fn,
// terminated by a semicolon. Constructors have no return type.
func signature(fn *ast.FunctionDesc) string {
	s := typeParameters(fn.TypeParameters) + parameters(fn.Parameters)
	if !fn.IsConstructor {
		ret := "void"
		if fn.ReturnType != nil {
			ret = typeString(fn.ReturnType, ast.UsageReturnValue)
		}
		s += ": " + ret
	}
	return s + ";"
}
