// Package jsonfix normalizes and repairs api.json symbol lists before they are
// turned into declarations.
//
// Fix applies the repair steps in a fixed order. Every step is also exported
// so it can be run and tested on its own. All steps mutate the document in
// place; callers that keep the input (for example a dependency cache) must
// pass a clone.
package jsonfix

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/gnana997/ui5dts/pkg/apijson"
)

// Options configures a Fix run.
type Options struct {
	Directives *apijson.Directives

	// Dependencies are the already fixed documents of all libraries the
	// document depends on. They complete the type universe used for is-a
	// checks such as "is this class a ManagedObject".
	Dependencies []*apijson.Document

	// Main is set for the library declarations are generated for. Forward
	// declarations and the module names interface are only added to it.
	Main bool

	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *Options) directives() *apijson.Directives {
	if o.Directives == nil {
		return &apijson.Directives{}
	}
	return o.Directives
}

// Fix runs all repair steps on doc.
func Fix(doc *apijson.Document, opts Options) error {
	logger := opts.logger().With("library", doc.Library)
	directives := opts.directives()

	if err := MergeOverlays(doc, directives.Overlays[doc.Library]); err != nil {
		return errors.Wrapf(err, "merging overlays into %s", doc.Library)
	}
	ApplyLegacyFixes(doc, logger)
	MoveTypeParametersFromConstructorToClass(doc)
	FixBasenames(doc)
	MoveFunctionsAttachedToFunctionsIntoNamespaces(doc)
	ConvertNamespacesIntoTypedefsOrInterfaces(doc, directives)
	DetermineMissingExportsForTypes(doc, logger)

	universe := apijson.NewTypeUniverse(append([]*apijson.Document{doc}, opts.Dependencies...)...)
	AddManagedObjectAccessors(doc, universe)

	ParseTypeExpressions(doc, directives.TypeTyposMap, logger)
	MarkDeprecatedAliasesForEnums(doc, directives)

	if opts.Main {
		AddForwardDeclarations(doc, directives)
		AddInterfaceWithModuleNames(doc)
		// Stubs arrive unparsed; parsing skips everything already parsed.
		ParseTypeExpressions(doc, directives.TypeTyposMap, logger)
	}

	AddConstructorSettingsInterfaces(doc, universe)
	AddEventParameterInterfaces(doc, universe)
	AddImplicitNamespaces(doc)

	RemoveBadSymbols(doc, directives)
	RemoveRestrictedInterfaces(doc, directives, universe)
	RemoveRestrictedSymbols(doc)
	RemoveRestrictedMembers(doc)

	logger.Debug("api.json fixed", "symbols", len(doc.Symbols))
	return nil
}

// index maps symbol names to symbols of one document.
func index(doc *apijson.Document) map[string]*apijson.Symbol {
	idx := make(map[string]*apijson.Symbol, len(doc.Symbols))
	for _, sym := range doc.Symbols {
		idx[sym.Name] = sym
	}
	return idx
}
