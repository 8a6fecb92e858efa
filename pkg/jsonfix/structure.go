package jsonfix

import (
	"log/slog"
	"strings"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

// MoveTypeParametersFromConstructorToClass moves type parameters declared on
// a class constructor to the class itself.
func MoveTypeParametersFromConstructorToClass(doc *apijson.Document) {
	for _, sym := range doc.Symbols {
		if sym.Kind != apijson.KindClass || sym.Constructor == nil {
			continue
		}
		if len(sym.Constructor.TypeParameters) == 0 {
			continue
		}
		if len(sym.TypeParameters) == 0 {
			sym.TypeParameters = sym.Constructor.TypeParameters
		}
		sym.Constructor.TypeParameters = nil
	}
}

// FixBasenames derives the basename of every symbol from its name. Names
// with a module prefix always get a fresh basename, others only when it is
// missing.
func FixBasenames(doc *apijson.Document) {
	for _, sym := range doc.Symbols {
		if strings.HasPrefix(sym.Name, modulePrefix) || sym.Basename == "" {
			sym.Basename = baseName(sym.Name)
		}
	}
}

// MoveFunctionsAttachedToFunctionsIntoNamespaces relocates static methods
// such as "require.toUrl" of sap.ui into a namespace sap.ui.require. The
// namespace merges with the function of the same name.
func MoveFunctionsAttachedToFunctionsIntoNamespaces(doc *apijson.Document) {
	idx := index(doc)
	var added []*apijson.Symbol

	for _, sym := range doc.Symbols {
		if sym.Kind != apijson.KindNamespace && sym.Kind != apijson.KindClass {
			continue
		}
		kept := sym.Methods[:0]
		for _, m := range sym.Methods {
			dot := strings.LastIndexByte(m.Name, '.')
			if dot < 0 || !(m.Static || sym.Kind == apijson.KindNamespace) {
				kept = append(kept, m)
				continue
			}
			nsName := sym.Name + "." + m.Name[:dot]
			ns, ok := idx[nsName]
			if !ok {
				ns = &apijson.Symbol{
					Kind:       apijson.KindNamespace,
					Name:       nsName,
					Basename:   baseName(nsName),
					Visibility: m.Visibility,
					Synthetic:  true,
				}
				idx[nsName] = ns
				added = append(added, ns)
			}
			m.Name = m.Name[dot+1:]
			m.Static = true
			ns.Methods = append(ns.Methods, m)
		}
		sym.Methods = kept
	}
	doc.Symbols = append(doc.Symbols, added...)
}

// ConvertNamespacesIntoTypedefsOrInterfaces reclassifies namespaces. Datatype
// namespaces become typedefs, namespaces listed in the directives become
// interfaces or objects, and namespaces exported from a non-library module
// become objects because they are runtime values.
func ConvertNamespacesIntoTypedefsOrInterfaces(doc *apijson.Document, directives *apijson.Directives) {
	for i, sym := range doc.Symbols {
		if sym.Kind != apijson.KindNamespace {
			continue
		}
		switch {
		case sym.UI5Metadata != nil && sym.UI5Metadata.Stereotype == "datatype":
			doc.Symbols[i] = reclassify(sym, apijson.KindTypedef, func(s *apijson.Symbol) {
				base := s.UI5Metadata.Basetype
				if base == "" {
					base = "string"
				}
				s.Type = apijson.NewTypeExpr(base)
				s.Methods = nil
				s.Properties = nil
			})
		case directives.NamespaceConversionFor(sym.Name) == apijson.ConvertToInterface:
			doc.Symbols[i] = reclassify(sym, apijson.KindInterface, func(s *apijson.Symbol) {
				for _, p := range s.Properties {
					p.Static = false
				}
				for _, m := range s.Methods {
					m.Static = false
				}
			})
		case directives.NamespaceConversionFor(sym.Name) == apijson.ConvertToObject || isStaticObject(sym):
			doc.Symbols[i] = reclassify(sym, apijson.KindObject, nil)
		}
	}
}

func isStaticObject(sym *apijson.Symbol) bool {
	_, exported := sym.ExportName()
	return exported && sym.Module != "" && !isLibraryModule(sym.Module)
}

// reclassify returns a copy of sym with a new kind. The original symbol is not
// modified because dependency documents may share it.
func reclassify(sym *apijson.Symbol, kind apijson.Kind, adjust func(*apijson.Symbol)) *apijson.Symbol {
	cp := sym.Clone()
	cp.Kind = kind
	if adjust != nil {
		adjust(cp)
	}
	return cp
}

// DetermineMissingExportsForTypes assigns export names to interfaces and
// typedefs that live in a module but have none. The name is taken relative to
// the symbol exported as the module's default, falling back to the basename.
func DetermineMissingExportsForTypes(doc *apijson.Document, logger *slog.Logger) {
	defaults := make(map[string]string)
	for _, sym := range doc.Symbols {
		if name, ok := sym.ExportName(); ok && name == "" && sym.Module != "" {
			defaults[sym.Module] = sym.Name
		}
	}

	for _, sym := range doc.Symbols {
		if sym.Kind != apijson.KindInterface && sym.Kind != apijson.KindTypedef {
			continue
		}
		if sym.Module == "" || sym.Export != nil {
			continue
		}
		if owner, ok := defaults[sym.Module]; ok && strings.HasPrefix(sym.Name, owner+".") {
			sym.Export = apijson.StringPtr(strings.TrimPrefix(sym.Name, owner+"."))
			continue
		}
		name := sym.Basename
		if name == "" {
			name = baseName(sym.Name)
		}
		sym.Export = apijson.StringPtr(name)
		logger.Warn("derived export name from basename",
			"fqn", sym.Name, "module", sym.Module, "export", name)
	}
}

// AddImplicitNamespaces adds a synthetic namespace for every dotted prefix of
// a symbol name that is not declared. Running it again adds nothing.
func AddImplicitNamespaces(doc *apijson.Document) {
	idx := index(doc)
	var added []*apijson.Symbol
	for _, sym := range doc.Symbols {
		for parent := parentName(sym.Name); parent != ""; parent = parentName(parent) {
			if _, ok := idx[parent]; ok {
				continue
			}
			ns := &apijson.Symbol{
				Kind:       apijson.KindNamespace,
				Name:       parent,
				Basename:   baseName(parent),
				Visibility: ast.VisibilityPublic,
				Synthetic:  true,
			}
			idx[parent] = ns
			added = append(added, ns)
		}
	}
	doc.Symbols = append(doc.Symbols, added...)
}
