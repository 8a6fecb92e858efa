// Package astbuild turns a fixed api.json document into the declaration IR:
// one module per UI5 module with its imports and exports, plus the ambient
// namespace tree for symbols that no module exports.
package astbuild

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
	"github.com/gnana997/ui5dts/pkg/genctx"
)

// rootNamespace is always emitted, even when empty.
const rootNamespace = "sap"

// Result is the IR of one library.
type Result struct {
	// Modules are sorted by module name.
	Modules []*ast.Module
	// Globals are the ambient namespace roots. The sap root comes last.
	Globals []*ast.Namespace
}

// location is where a module exports a symbol. An empty export is the
// default export; dotted exports live in nested namespaces.
type location struct {
	module string
	export string
}

// Builder builds the IR of one document. It is not safe for concurrent use.
type Builder struct {
	ctx    *genctx.Context
	logger *slog.Logger
	doc    *apijson.Document
	// symbols indexes the document, synthetic namespaces included.
	symbols map[string]*apijson.Symbol
}

// moduleEntry is one export of a module in document order.
type moduleEntry struct {
	sym    *apijson.Symbol
	member ast.Declaration
	fqn    string
	path   string
}

// Build creates the IR for doc. Name conflicts that cannot be solved by
// renaming and symbols of unknown kind are fatal.
func Build(ctx *genctx.Context, doc *apijson.Document) (*Result, error) {
	if ctx.Universe == nil {
		ctx.Universe = apijson.NewTypeUniverse(doc)
	}
	b := &Builder{
		ctx:     ctx,
		logger:  ctx.Log().With("phase", "astbuild"),
		doc:     doc,
		symbols: make(map[string]*apijson.Symbol, len(doc.Symbols)),
	}
	for _, sym := range doc.Symbols {
		b.symbols[sym.Name] = sym
	}

	modules, err := b.buildModules()
	if err != nil {
		return nil, err
	}
	globals, err := b.buildGlobals()
	if err != nil {
		return nil, err
	}
	b.logger.Debug("built declarations", "modules", len(modules), "roots", len(globals))
	return &Result{Modules: modules, Globals: globals}, nil
}

// location reports whether a module exports sym and where. Namespaces
// without an export name are containers of the ambient tree, library
// namespaces in particular.
func (b *Builder) location(sym *apijson.Symbol) (location, bool) {
	if b.ctx.GenerateGlobals || sym.Synthetic || sym.Module == "" {
		return location{}, false
	}
	export, ok := sym.ExportName()
	if !ok || (sym.Kind == apijson.KindNamespace && export == "") {
		return location{}, false
	}
	return location{module: sym.Module, export: export}, true
}

// exportedSeparately reports whether a member of owner is exported by a
// module on its own and therefore not declared inside owner.
func (b *Builder) exportedSeparately(owner *apijson.Symbol, module string, export *string) bool {
	if b.ctx.GenerateGlobals || module == "" || export == nil {
		return false
	}
	loc, ok := b.location(owner)
	return !ok || loc.module != module
}

// isLibraryEnum reports whether an enum is exported directly from its module.
// Other enums are attached to the default export of their module at runtime.
func (b *Builder) isLibraryEnum(sym *apijson.Symbol) bool {
	if isLibraryModule(sym.Module) {
		return true
	}
	export, _ := sym.ExportName()
	first, _, _ := strings.Cut(export, ".")
	return strings.HasSuffix(first, "Helper") || strings.HasSuffix(first, "Provider")
}

func (b *Builder) collectModuleEntries() (map[string][]moduleEntry, []string) {
	entries := make(map[string][]moduleEntry)
	var names []string
	add := func(module string, e moduleEntry) {
		if _, ok := entries[module]; !ok {
			names = append(names, module)
		}
		entries[module] = append(entries[module], e)
	}

	for _, sym := range b.doc.Symbols {
		if sym.ForwardDeclaration {
			continue
		}
		if loc, ok := b.location(sym); ok {
			add(loc.module, moduleEntry{sym: sym, fqn: sym.Name, path: loc.export})
		}
		if sym.Kind != apijson.KindClass && sym.Kind != apijson.KindNamespace {
			continue
		}
		for _, p := range sym.Properties {
			if !b.exportedSeparately(sym, p.Module, p.Export) {
				continue
			}
			v := b.buildProperty(p, sym.Name)
			v.Static = false
			v.Const = p.Readonly
			add(p.Module, moduleEntry{member: v, fqn: v.FQN, path: *p.Export})
		}
		for _, m := range sym.Methods {
			if !b.exportedSeparately(sym, m.Module, m.Export) {
				continue
			}
			fn := b.buildMethod(m, sym.Name)
			fn.Static = false
			add(m.Module, moduleEntry{member: fn, fqn: fn.FQN, path: *m.Export})
		}
	}
	slices.Sort(names)
	return entries, names
}

func (b *Builder) buildModules() ([]*ast.Module, error) {
	entries, names := b.collectModuleEntries()
	var modules []*ast.Module
	for _, name := range names {
		m := newModuleBuilder(b, name)
		for _, e := range entries[name] {
			m.reserve(e.path)
		}
		for _, e := range entries[name] {
			var err error
			if e.sym != nil {
				err = m.exportSymbol(e.sym, e.path)
			} else {
				err = m.exportMember(e.fqn, e.member, e.path)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "building module %s", name)
			}
		}
		m.attachEnums()

		for _, e := range m.exports {
			b.resolveTypes(e.Expression, m.lookup)
		}
		modules = append(modules, m.toAST())
	}
	return modules, nil
}

// buildGlobals builds the ambient namespace tree from every symbol that no
// module exports.
func (b *Builder) buildGlobals() ([]*ast.Namespace, error) {
	children := make(map[string][]*apijson.Symbol)
	rootSet := map[string]bool{rootNamespace: true}
	for _, sym := range b.doc.Symbols {
		if sym.ForwardDeclaration {
			continue
		}
		if _, ok := b.location(sym); ok && sym.Kind != apijson.KindNamespace {
			continue
		}
		parent := parentName(sym.Name)
		if parent == "" {
			if sym.Kind == apijson.KindNamespace {
				rootSet[sym.Name] = true
			} else {
				b.logger.Warn("skipping global symbol outside of any namespace", "fqn", sym.Name)
			}
			continue
		}
		children[parent] = append(children[parent], sym)
		first, _, _ := strings.Cut(parent, ".")
		rootSet[first] = true
	}
	b.addContainers(children)

	roots := make([]string, 0, len(rootSet))
	for name := range rootSet {
		if name != rootNamespace {
			roots = append(roots, name)
		}
	}
	slices.Sort(roots)
	roots = append(roots, rootNamespace)

	var out []*ast.Namespace
	for _, name := range roots {
		ns := &ast.Namespace{Name: name, FQN: name}
		if sym, ok := b.symbols[name]; ok {
			if _, exported := b.location(sym); !exported {
				b.addNamespaceMembers(ns, sym)
			}
		}
		if err := b.fillNamespace(ns, children); err != nil {
			return nil, err
		}
		if ns.IsEmpty() && name != rootNamespace {
			continue
		}
		b.resolveGlobals(ns)
		out = append(out, ns)
	}
	return out, nil
}

// addContainers registers namespaces for parents that have no symbol of their
// own, so that their children are reachable from a root.
func (b *Builder) addContainers(children map[string][]*apijson.Symbol) {
	parents := make([]string, 0, len(children))
	for parent := range children {
		parents = append(parents, parent)
	}
	slices.Sort(parents)

	added := make(map[string]bool)
	for _, p := range parents {
		for ; strings.Contains(p, "."); p = parentName(p) {
			if sym, ok := b.symbols[p]; ok {
				// Module exports other than namespaces are not part of the tree.
				if _, exported := b.location(sym); !exported || sym.Kind == apijson.KindNamespace {
					continue
				}
			}
			if added[p] {
				continue
			}
			added[p] = true
			up := parentName(p)
			children[up] = append(children[up], &apijson.Symbol{
				Kind:      apijson.KindNamespace,
				Name:      p,
				Basename:  baseName(p),
				Synthetic: true,
			})
		}
	}
}

// fillNamespace adds the child symbols of ns recursively. Namespace members
// cannot be renamed, so a clash between two non-merging declarations fails.
func (b *Builder) fillNamespace(ns *ast.Namespace, children map[string][]*apijson.Symbol) error {
	sc := newScope(false)
	for _, d := range ns.Members() {
		if err := sc.claim(d.DeclName(), d); err != nil {
			return errors.Wrapf(err, "namespace %s", ns.FQN)
		}
	}

	for _, sym := range children[ns.FQN] {
		name := sym.Basename
		if name == "" {
			name = baseName(sym.Name)
		}

		if sym.Kind == apijson.KindNamespace {
			child := &ast.Namespace{
				Name:     name,
				FQN:      sym.Name,
				Doc:      buildDoc(sym.Doc, sym.Visibility),
				Exported: true,
			}
			if _, exported := b.location(sym); !exported {
				b.addNamespaceMembers(child, sym)
			}
			if err := b.fillNamespace(child, children); err != nil {
				return err
			}
			if child.IsEmpty() {
				continue
			}
			if err := sc.claim(name, child); err != nil {
				return errors.Wrapf(err, "namespace %s", ns.FQN)
			}
			ns.Add(child)
			continue
		}

		decls, err := b.buildSymbol(sym, name)
		if err != nil {
			return err
		}
		for _, d := range decls {
			if err := sc.claim(name, d); err != nil {
				return errors.Wrapf(err, "namespace %s", ns.FQN)
			}
			ns.Add(d)
		}

		// Symbols nested below a class or enum go into a namespace merging
		// with it.
		if len(children[sym.Name]) > 0 {
			nested := &ast.Namespace{Name: name, FQN: sym.Name, Exported: true}
			if err := b.fillNamespace(nested, children); err != nil {
				return err
			}
			if nested.IsEmpty() {
				continue
			}
			if err := sc.claim(name, nested); err != nil {
				return errors.Wrapf(err, "namespace %s", ns.FQN)
			}
			ns.Add(nested)
		}
	}
	return nil
}

func (b *Builder) resolveGlobals(ns *ast.Namespace) {
	lookup := b.globalLookup(ns.FQN)
	for _, d := range ns.Members() {
		if child, ok := d.(*ast.Namespace); ok {
			b.resolveGlobals(child)
			continue
		}
		b.resolveTypes(d, lookup)
	}
}
