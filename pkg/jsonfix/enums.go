package jsonfix

import (
	"slices"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

// MarkDeprecatedAliasesForEnums marks enums listed as deprecated aliases in
// the directives. An alias keeps no values of its own.
func MarkDeprecatedAliasesForEnums(doc *apijson.Document, directives *apijson.Directives) {
	for _, sym := range doc.Symbols {
		if sym.Kind != apijson.KindEnum {
			continue
		}
		target, ok := directives.DeprecatedEnumAliases[sym.Name]
		if !ok {
			continue
		}
		sym.DeprecatedAliasFor = target
		sym.Properties = nil
		if sym.Deprecated == nil {
			sym.Deprecated = &apijson.Note{Text: "Use " + target + " instead."}
		}
	}
}

// AddForwardDeclarations injects the stub symbols the directives declare for
// the library. They make symbols of libraries that depend on this one
// resolvable without being emitted.
func AddForwardDeclarations(doc *apijson.Document, directives *apijson.Directives) {
	idx := index(doc)
	for _, stub := range directives.ForwardDeclarations[doc.Library] {
		if _, ok := idx[stub.Name]; ok {
			continue
		}
		sym := stub.Clone()
		sym.ForwardDeclaration = true
		if sym.Basename == "" {
			sym.Basename = baseName(sym.Name)
		}
		idx[sym.Name] = sym
		doc.Symbols = append(doc.Symbols, sym)
	}
}

const moduleNamesInterface = "sap.IUI5DefineDependencyNames"

// AddInterfaceWithModuleNames adds an interface whose property names are the
// modules of all visible symbols. It powers completion of sap.ui.define
// dependency arrays; interfaces of several libraries merge.
func AddInterfaceWithModuleNames(doc *apijson.Document) {
	seen := make(map[string]bool)
	var modules []string
	for _, sym := range doc.Symbols {
		if sym.Module == "" || sym.Synthetic || sym.ForwardDeclaration || !apijson.IsVisible(sym.Visibility) {
			continue
		}
		if !seen[sym.Module] {
			seen[sym.Module] = true
			modules = append(modules, sym.Module)
		}
	}
	slices.Sort(modules)

	iface := &apijson.Symbol{
		Kind:       apijson.KindInterface,
		Name:       moduleNamesInterface,
		Basename:   baseName(moduleNamesInterface),
		Visibility: ast.VisibilityPublic,
	}
	for _, m := range modules {
		iface.Properties = append(iface.Properties, &apijson.Property{
			Name:       m,
			Visibility: ast.VisibilityPublic,
			Type:       &apijson.TypeExpr{Raw: "undefined", Parsed: ast.Ref("undefined")},
		})
	}

	for i, sym := range doc.Symbols {
		if sym.Name == moduleNamesInterface {
			doc.Symbols[i] = iface
			return
		}
	}
	doc.Symbols = append(doc.Symbols, iface)
}
