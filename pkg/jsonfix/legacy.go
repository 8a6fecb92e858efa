package jsonfix

import (
	"log/slog"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

const coreLibrary = "sap.ui.core"

// staticClassesInCore are documented as classes in sap.ui.core but only ever
// used through their static API; they are declared as namespaces.
var staticClassesInCore = []string{
	"sap.ui.core.BusyIndicator",
	"sap.ui.core.theming.Parameters",
}

// ApplyLegacyFixes applies library specific substitutions. They only touch
// sap.ui.core and are kept for compatibility with existing declarations.
func ApplyLegacyFixes(doc *apijson.Document, logger *slog.Logger) {
	if doc.Library != coreLibrary {
		return
	}

	idx := index(doc)
	if _, ok := idx["sap.ClassInfo"]; !ok {
		doc.Symbols = append(doc.Symbols, &apijson.Symbol{
			Kind:       apijson.KindTypedef,
			Name:       "sap.ClassInfo",
			Basename:   "ClassInfo",
			Visibility: ast.VisibilityPublic,
			TypeParameters: []*apijson.TypeParameter{
				{Name: "T"},
				{Name: "C"},
			},
			Type: apijson.NewTypeExpr("Object<string,any>"),
			Doc: apijson.Doc{
				Description: "Describes the settings that can be provided to the extend method of a class.",
			},
		})
	}

	for i, sym := range doc.Symbols {
		if sym.Kind != apijson.KindClass || !contains(staticClassesInCore, sym.Name) {
			continue
		}
		ns := sym.Clone()
		ns.Kind = apijson.KindNamespace
		ns.Constructor = nil
		ns.Extends = nil
		ns.Implements = nil
		ns.UI5Metadata = nil
		for _, m := range ns.Methods {
			m.Static = true
		}
		doc.Symbols[i] = ns
		logger.Debug("declaring static class as namespace", "fqn", sym.Name)
	}
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
