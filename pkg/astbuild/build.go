package astbuild

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

// buildSymbol converts one fixed symbol into declarations named name. Static
// objects yield an interface and a const; every other kind yields one
// declaration.
func (b *Builder) buildSymbol(sym *apijson.Symbol, name string) ([]ast.Declaration, error) {
	switch sym.Kind {
	case apijson.KindClass:
		return []ast.Declaration{b.buildClass(sym, name)}, nil
	case apijson.KindInterface:
		return []ast.Declaration{b.buildInterface(sym, name)}, nil
	case apijson.KindEnum:
		return []ast.Declaration{b.buildEnum(sym, name)}, nil
	case apijson.KindTypedef:
		return []ast.Declaration{b.buildTypedef(sym, name)}, nil
	case apijson.KindNamespace:
		return []ast.Declaration{b.buildNamespaceSymbol(sym, name)}, nil
	case apijson.KindObject:
		iface, value := b.buildObject(sym, name)
		return []ast.Declaration{iface, value}, nil
	case apijson.KindFunction:
		return []ast.Declaration{b.buildFunction(sym, name)}, nil
	}
	return nil, errors.Wrapf(ErrUnknownSymbolKind, "%q has kind %q", sym.Name, sym.Kind)
}

func buildDoc(d apijson.Doc, visibility ast.Visibility) *ast.Doc {
	doc := &ast.Doc{
		Description: d.Description,
		Since:       d.Since,
		References:  d.References,
		Visibility:  visibility,
	}
	if d.Deprecated != nil {
		doc.Deprecated = &ast.Note{Since: d.Deprecated.Since, Text: d.Deprecated.Text}
	}
	if d.Experimental != nil {
		doc.Experimental = &ast.Note{Since: d.Experimental.Since, Text: d.Experimental.Text}
	}
	return doc
}

// typeOf returns the parsed IR type of an expression. Unparsed expressions
// only occur for symbols that skipped the fixer; they become any.
func typeOf(t *apijson.TypeExpr) ast.Type {
	if t == nil || t.Parsed == nil {
		return ast.Ref("any")
	}
	return ast.CloneType(t.Parsed)
}

func optionalTypeOf(t *apijson.TypeExpr) ast.Type {
	if t == nil {
		return nil
	}
	return typeOf(t)
}

func buildTypeParameters(tps []*apijson.TypeParameter) []*ast.TypeParameter {
	var out []*ast.TypeParameter
	for _, tp := range tps {
		out = append(out, &ast.TypeParameter{
			Name:       tp.Name,
			Constraint: optionalTypeOf(tp.Type),
			Default:    optionalTypeOf(tp.Default),
		})
	}
	return out
}

func buildParameters(params []*apijson.Parameter) []*ast.Parameter {
	var out []*ast.Parameter
	for _, p := range params {
		typ := typeOf(p.Type)
		param := &ast.Parameter{
			Name:        p.Name,
			Type:        typ,
			Optional:    p.Optional,
			Omissible:   p.Omissible,
			Description: p.Description,
		}
		if arr, ok := typ.(*ast.ArrayType); ok && arr.Variadic {
			param.Rest = true
			param.Optional = false
		}
		out = append(out, param)
	}
	return out
}

func (b *Builder) buildMethod(m *apijson.Method, owner string) *ast.FunctionDesc {
	fn := &ast.FunctionDesc{
		Name:           m.Name,
		FQN:            owner + "." + m.Name,
		Doc:            buildDoc(m.Doc, m.Visibility),
		TypeParameters: buildTypeParameters(m.TypeParameters),
		Parameters:     buildParameters(m.Parameters),
		ReturnType:     ast.Ref("void"),
		Static:         m.Static,
		Abstract:       m.Abstract,
		Optional:       m.Optional,
		Visibility:     m.Visibility,
	}
	if m.ReturnValue != nil {
		fn.ReturnType = typeOf(m.ReturnValue.Type)
		fn.Doc.Returns = m.ReturnValue.Description
	}
	for _, t := range m.Throws {
		fn.Doc.Throws = append(fn.Doc.Throws, ast.ThrowsDoc{Type: t.Type.String(), Description: t.Description})
	}
	return fn
}

func (b *Builder) buildProperty(p *apijson.Property, owner string) *ast.Variable {
	return &ast.Variable{
		Name:       p.Name,
		FQN:        owner + "." + p.Name,
		Doc:        buildDoc(p.Doc, p.Visibility),
		Type:       typeOf(p.Type),
		Optional:   p.Optional,
		Static:     p.Static,
		Readonly:   p.Readonly,
		Visibility: p.Visibility,
	}
}

func (b *Builder) buildClass(sym *apijson.Symbol, name string) *ast.Class {
	c := &ast.Class{
		Name:           name,
		FQN:            sym.Name,
		Doc:            buildDoc(sym.Doc, sym.Visibility),
		TypeParameters: buildTypeParameters(sym.TypeParameters),
		Abstract:       sym.Abstract,
		Final:          sym.Final,
	}
	if super := sym.Extends.First(); super != "" {
		c.Extends = ast.Ref(super)
	}
	for _, iface := range sym.Implements {
		c.Implements = append(c.Implements, ast.Ref(iface))
		c.ImplementsFQName = append(c.ImplementsFQName, iface)
	}
	if sym.Constructor != nil {
		ctor := b.buildMethod(sym.Constructor, sym.Name)
		ctor.Name = sym.Basename
		ctor.FQN = sym.Name
		ctor.IsConstructor = true
		ctor.ReturnType = nil
		c.Constructors = append(c.Constructors, ctor)
	}
	for _, p := range sym.Properties {
		if b.exportedSeparately(sym, p.Module, p.Export) {
			continue
		}
		c.Props = append(c.Props, b.buildProperty(p, sym.Name))
	}
	for _, m := range sym.Methods {
		if b.exportedSeparately(sym, m.Module, m.Export) {
			continue
		}
		c.Methods = append(c.Methods, b.buildMethod(m, sym.Name))
	}
	return c
}

// nominalInterface reports whether an interface is a UI5 interface that
// classes implement explicitly. Generated settings, event parameter and
// module name interfaces are structural.
func nominalInterface(sym *apijson.Symbol) bool {
	return !strings.Contains(sym.Name, "$") && !strings.HasPrefix(sym.Name, "sap.IUI5")
}

func (b *Builder) buildInterface(sym *apijson.Symbol, name string) *ast.Interface {
	iface := &ast.Interface{
		Name:           name,
		FQN:            sym.Name,
		Doc:            buildDoc(sym.Doc, sym.Visibility),
		TypeParameters: buildTypeParameters(sym.TypeParameters),
		Nominal:        nominalInterface(sym),
	}
	for _, super := range sym.Extends {
		iface.Extends = append(iface.Extends, ast.Ref(super))
	}
	for _, p := range sym.Properties {
		v := b.buildProperty(p, sym.Name)
		v.Static = false
		iface.Props = append(iface.Props, v)
	}
	for _, m := range sym.Methods {
		fn := b.buildMethod(m, sym.Name)
		fn.Static = false
		iface.Methods = append(iface.Methods, fn)
	}
	return iface
}

func (b *Builder) buildEnum(sym *apijson.Symbol, name string) *ast.Enum {
	e := &ast.Enum{
		Name:     name,
		FQN:      sym.Name,
		Doc:      buildDoc(sym.Doc, sym.Visibility),
		Standard: apijson.IsStandardEnum(sym),
	}
	if sym.DeprecatedAliasFor != "" {
		e.AliasFor = ast.Ref(sym.DeprecatedAliasFor)
		return e
	}
	for _, p := range sym.Properties {
		value := p.Value
		if value == nil {
			value = p.Name
		}
		e.Values = append(e.Values, &ast.Variable{
			Name:       p.Name,
			FQN:        sym.Name + "." + p.Name,
			Doc:        buildDoc(p.Doc, p.Visibility),
			Value:      value,
			Visibility: p.Visibility,
		})
	}
	return e
}

// buildTypedef handles the three typedef shapes: an alias, a record and a
// callback signature. Records become structural interfaces.
func (b *Builder) buildTypedef(sym *apijson.Symbol, name string) ast.Declaration {
	if sym.Type == nil && len(sym.Properties) > 0 {
		iface := &ast.Interface{
			Name:           name,
			FQN:            sym.Name,
			Doc:            buildDoc(sym.Doc, sym.Visibility),
			TypeParameters: buildTypeParameters(sym.TypeParameters),
		}
		for _, p := range sym.Properties {
			v := b.buildProperty(p, sym.Name)
			v.Static = false
			iface.Props = append(iface.Props, v)
		}
		return iface
	}

	alias := &ast.TypeAliasDeclaration{
		Name:           name,
		FQN:            sym.Name,
		Doc:            buildDoc(sym.Doc, sym.Visibility),
		TypeParameters: buildTypeParameters(sym.TypeParameters),
	}
	switch {
	case sym.Type != nil:
		alias.Type = typeOf(sym.Type)
	case len(sym.Parameters) > 0 || sym.ReturnValue != nil:
		fn := &ast.FunctionType{Parameters: buildParameters(sym.Parameters), ReturnType: ast.Ref("void")}
		if sym.ReturnValue != nil {
			fn.ReturnType = typeOf(sym.ReturnValue.Type)
		}
		alias.Type = fn
	default:
		alias.Type = ast.Ref("any")
	}
	return alias
}

// buildNamespaceSymbol builds a namespace with the static members of a
// namespace symbol. Nested symbols are added by the caller.
func (b *Builder) buildNamespaceSymbol(sym *apijson.Symbol, name string) *ast.Namespace {
	ns := &ast.Namespace{
		Name:     name,
		FQN:      sym.Name,
		Doc:      buildDoc(sym.Doc, sym.Visibility),
		Exported: true,
	}
	b.addNamespaceMembers(ns, sym)
	return ns
}

func (b *Builder) addNamespaceMembers(ns *ast.Namespace, sym *apijson.Symbol) {
	for _, p := range sym.Properties {
		if b.exportedSeparately(sym, p.Module, p.Export) {
			continue
		}
		v := b.buildProperty(p, sym.Name)
		v.Static = false
		v.Const = p.Readonly
		ns.Variables = append(ns.Variables, v)
	}
	for _, m := range sym.Methods {
		if b.exportedSeparately(sym, m.Module, m.Export) {
			continue
		}
		fn := b.buildMethod(m, sym.Name)
		fn.Static = false
		ns.Functions = append(ns.Functions, fn)
	}
}

// buildObject builds the interface and const pair of a static object. The
// const is typed with the interface through the object's own name, which the
// resolver maps to the local name.
func (b *Builder) buildObject(sym *apijson.Symbol, name string) (*ast.Interface, *ast.Variable) {
	iface := &ast.Interface{
		Name:           name,
		FQN:            sym.Name,
		Doc:            buildDoc(sym.Doc, sym.Visibility),
		TypeParameters: buildTypeParameters(sym.TypeParameters),
		StaticObject:   true,
	}
	for _, p := range sym.Properties {
		v := b.buildProperty(p, sym.Name)
		v.Static = false
		iface.Props = append(iface.Props, v)
	}
	for _, m := range sym.Methods {
		fn := b.buildMethod(m, sym.Name)
		fn.Static = false
		iface.Methods = append(iface.Methods, fn)
	}
	value := &ast.Variable{
		Name:       name,
		FQN:        sym.Name,
		Doc:        buildDoc(sym.Doc, sym.Visibility),
		Type:       ast.Ref(sym.Name),
		Const:      true,
		Visibility: sym.Visibility,
	}
	return iface, value
}

func (b *Builder) buildFunction(sym *apijson.Symbol, name string) *ast.FunctionDesc {
	fn := &ast.FunctionDesc{
		Name:           name,
		FQN:            sym.Name,
		Doc:            buildDoc(sym.Doc, sym.Visibility),
		TypeParameters: buildTypeParameters(sym.TypeParameters),
		Parameters:     buildParameters(sym.Parameters),
		ReturnType:     ast.Ref("void"),
		Visibility:     sym.Visibility,
	}
	if sym.ReturnValue != nil {
		fn.ReturnType = typeOf(sym.ReturnValue.Type)
		fn.Doc.Returns = sym.ReturnValue.Description
	}
	for _, t := range sym.Throws {
		fn.Doc.Throws = append(fn.Doc.Throws, ast.ThrowsDoc{Type: t.Type.String(), Description: t.Description})
	}
	return fn
}
