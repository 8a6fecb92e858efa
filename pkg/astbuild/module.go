package astbuild

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

// nestedNamespace is a namespace created inside a module for a dotted export
// path.
type nestedNamespace struct {
	node  *ast.Namespace
	scope *scope
}

// moduleBuilder accumulates the exports and imports of one module. Local
// names are unique within the module; default exports and imports are renamed
// on conflict, named exports keep their names.
type moduleBuilder struct {
	b     *Builder
	name  string
	scope *scope

	exports []*ast.Export
	// byPath maps an export path ("" for the default export) to the position
	// of its first export in exports.
	byPath     map[string]int
	namespaces map[string]*nestedNamespace

	// locals maps symbol names to the expression naming them in this module.
	locals map[string]string

	imports map[string]*ast.Import
	// resolved caches import expressions by symbol name.
	resolved map[string]string

	defaultDecl ast.Declaration
	enums       []*ast.Enum
}

func newModuleBuilder(b *Builder, name string) *moduleBuilder {
	return &moduleBuilder{
		b:          b,
		name:       name,
		scope:      newScope(true),
		byPath:     make(map[string]int),
		namespaces: make(map[string]*nestedNamespace),
		locals:     make(map[string]string),
		imports:    make(map[string]*ast.Import),
		resolved:   make(map[string]string),
	}
}

// reserve keeps the first segment of a named export path away from renamable
// declarations.
func (m *moduleBuilder) reserve(path string) {
	if path == "" {
		return
	}
	first, _, _ := strings.Cut(path, ".")
	m.scope.reserved[first] = true
}

// exportSymbol builds sym and exports it under path.
func (m *moduleBuilder) exportSymbol(sym *apijson.Symbol, path string) error {
	if path == "" {
		name := m.scope.unique(sym.Basename, sym.Name)
		decls, err := m.b.buildSymbol(sym, name)
		if err != nil {
			return err
		}
		m.locals[sym.Name] = name
		return m.exportDefault(sym.Name, decls)
	}

	segments := strings.Split(path, ".")
	name := segments[len(segments)-1]
	decls, err := m.b.buildSymbol(sym, name)
	if err != nil {
		return err
	}
	m.locals[sym.Name] = path
	if e, ok := decls[0].(*ast.Enum); ok && len(segments) == 1 && !m.b.isLibraryEnum(sym) {
		m.enums = append(m.enums, e)
	}
	return m.exportNamed(sym.Name, segments, decls)
}

// exportMember exports a method or property that its module exports on its
// own, separately from the symbol owning it.
func (m *moduleBuilder) exportMember(fqn string, decl ast.Declaration, path string) error {
	if path == "" {
		name := m.scope.unique(decl.DeclName(), fqn)
		decl.SetDeclName(name)
		return m.exportDefault(fqn, []ast.Declaration{decl})
	}
	segments := strings.Split(path, ".")
	decl.SetDeclName(segments[len(segments)-1])
	return m.exportNamed(fqn, segments, []ast.Declaration{decl})
}

func (m *moduleBuilder) exportDefault(fqn string, decls []ast.Declaration) error {
	if pos, ok := m.byPath[""]; ok {
		m.b.logger.Error("duplicate default export, the later one wins",
			"module", m.name, "fqn", fqn, "previous", ast.FQNOf(m.exports[pos].Expression))
		m.exports = slices.Delete(m.exports, pos, pos+m.exportCount(pos))
		m.reindex()
	}
	m.byPath[""] = len(m.exports)
	for _, d := range decls {
		if err := m.scope.claim(d.DeclName(), d); err != nil {
			return err
		}
		export := &ast.Export{Name: d.DeclName(), Expression: d}
		// The interface half of a static object is a plain local declaration.
		if iface, ok := d.(*ast.Interface); !ok || !iface.StaticObject {
			export.AsDefault = true
			m.defaultDecl = d
		}
		m.exports = append(m.exports, export)
	}
	return nil
}

// exportCount returns how many consecutive exports belong to the export at
// pos: two for a static object, one otherwise.
func (m *moduleBuilder) exportCount(pos int) int {
	if iface, ok := m.exports[pos].Expression.(*ast.Interface); ok && iface.StaticObject && pos+1 < len(m.exports) {
		return 2
	}
	return 1
}

func (m *moduleBuilder) reindex() {
	clear(m.byPath)
	for i, e := range m.exports {
		key := e.Name
		if e.AsDefault {
			key = ""
		}
		if _, ok := m.byPath[key]; !ok {
			m.byPath[key] = i
		}
		if iface, ok := e.Expression.(*ast.Interface); ok && iface.StaticObject && i+1 < len(m.exports) && m.exports[i+1].AsDefault {
			m.byPath[""] = i
		}
	}
}

func (m *moduleBuilder) exportNamed(fqn string, segments []string, decls []ast.Declaration) error {
	if len(segments) == 1 {
		key := segments[0]
		if pos, ok := m.byPath[key]; ok && !mergeable(m.exports[pos].Expression, decls[0]) {
			m.b.logger.Error("duplicate export, the later one wins",
				"module", m.name, "export", key, "fqn", fqn, "previous", ast.FQNOf(m.exports[pos].Expression))
			m.exports = slices.Delete(m.exports, pos, pos+m.exportCount(pos))
			delete(m.scope.names, key)
			m.reindex()
		}
		if _, ok := m.byPath[key]; !ok {
			m.byPath[key] = len(m.exports)
		}
		for _, d := range decls {
			if err := m.scope.claim(key, d); err != nil {
				return errors.Wrapf(err, "module %s", m.name)
			}
			m.exports = append(m.exports, &ast.Export{Name: key, Expression: d})
		}
		return nil
	}

	ns, err := m.namespace(segments[:len(segments)-1])
	if err != nil {
		return err
	}
	name := segments[len(segments)-1]
	if existing, ok := ns.scope.names[name]; ok && !mergeable(existing, decls[0]) {
		m.b.logger.Error("duplicate export, the later one wins",
			"module", m.name, "export", strings.Join(segments, "."), "fqn", fqn)
		removeMember(ns.node, existing)
		delete(ns.scope.names, name)
	}
	for _, d := range decls {
		if err := ns.scope.claim(name, d); err != nil {
			return errors.Wrapf(err, "module %s", m.name)
		}
		ns.node.Add(d)
	}
	return nil
}

// namespace returns the nested namespace for path, creating the chain and
// exporting its root when needed.
func (m *moduleBuilder) namespace(path []string) (*nestedNamespace, error) {
	key := strings.Join(path, ".")
	if ns, ok := m.namespaces[key]; ok {
		return ns, nil
	}
	node := &ast.Namespace{Name: path[len(path)-1], Exported: true}
	ns := &nestedNamespace{node: node, scope: newScope(false)}

	if len(path) == 1 {
		if err := m.scope.claim(key, node); err != nil {
			return nil, errors.Wrapf(err, "module %s", m.name)
		}
		if _, ok := m.byPath[key]; !ok {
			m.byPath[key] = len(m.exports)
		}
		m.exports = append(m.exports, &ast.Export{Name: key, Expression: node})
	} else {
		parent, err := m.namespace(path[:len(path)-1])
		if err != nil {
			return nil, err
		}
		if err := parent.scope.claim(node.Name, node); err != nil {
			return nil, errors.Wrapf(err, "module %s", m.name)
		}
		parent.node.Add(node)
	}
	m.namespaces[key] = ns
	return ns, nil
}

func removeMember(ns *ast.Namespace, d ast.Declaration) {
	switch v := d.(type) {
	case *ast.Namespace:
		ns.Namespaces = slices.DeleteFunc(ns.Namespaces, func(x *ast.Namespace) bool { return x == v })
	case *ast.Class:
		ns.Classes = slices.DeleteFunc(ns.Classes, func(x *ast.Class) bool { return x == v })
	case *ast.Interface:
		ns.Interfaces = slices.DeleteFunc(ns.Interfaces, func(x *ast.Interface) bool { return x == v })
	case *ast.Enum:
		ns.Enums = slices.DeleteFunc(ns.Enums, func(x *ast.Enum) bool { return x == v })
	case *ast.TypeAliasDeclaration:
		ns.TypeAliases = slices.DeleteFunc(ns.TypeAliases, func(x *ast.TypeAliasDeclaration) bool { return x == v })
	case *ast.FunctionDesc:
		ns.Functions = slices.DeleteFunc(ns.Functions, func(x *ast.FunctionDesc) bool { return x == v })
	case *ast.Variable:
		ns.Variables = slices.DeleteFunc(ns.Variables, func(x *ast.Variable) bool { return x == v })
	}
}

// attachEnums exposes enums that UI5 attaches to a module's default export
// as static members of that export and notes it in their documentation.
func (m *moduleBuilder) attachEnums() {
	for _, e := range m.enums {
		note := "This enum is part of the '" + m.name + "' module export and must be accessed by the property '" + e.Name + "'."
		if e.Doc == nil {
			e.Doc = &ast.Doc{}
		}
		if e.Doc.Description == "" {
			e.Doc.Description = note
		} else {
			e.Doc.Description += "\n\n" + note
		}

		prop := &ast.Variable{
			Name:       e.Name,
			Type:       ast.Native("typeof " + e.Name),
			Visibility: ast.VisibilityPublic,
		}
		switch d := m.defaultDecl.(type) {
		case *ast.Class:
			prop.Static = true
			d.Props = append(d.Props, prop)
		case *ast.Variable:
			if iface := m.staticObjectInterface(); iface != nil {
				iface.Props = append(iface.Props, prop)
			}
		}
	}
}

func (m *moduleBuilder) staticObjectInterface() *ast.Interface {
	for _, e := range m.exports {
		if iface, ok := e.Expression.(*ast.Interface); ok && iface.StaticObject {
			return iface
		}
	}
	return nil
}

// importExpression returns the local expression for a symbol exported from
// another module, adding the import on first use.
func (m *moduleBuilder) importExpression(fqn string, loc location) string {
	if expr, ok := m.resolved[fqn]; ok {
		return expr
	}
	imp, ok := m.imports[loc.module]
	if !ok {
		imp = &ast.Import{Module: loc.module}
		m.imports[loc.module] = imp
	}

	var expr string
	if loc.export == "" {
		if imp.DefaultName == "" {
			imp.DefaultName = m.scope.unique(baseName(fqn), fqn)
			m.scope.hold(imp.DefaultName)
		}
		expr = imp.DefaultName
	} else {
		first, rest, nested := strings.Cut(loc.export, ".")
		local := ""
		for _, mapping := range imp.Named {
			if mapping.Imported == first {
				local = mapping.Local
				break
			}
		}
		if local == "" {
			local = m.scope.unique(first, "")
			m.scope.hold(local)
			imp.Named = append(imp.Named, ast.ImportMapping{Imported: first, Local: local})
		}
		expr = local
		if nested {
			expr += "." + rest
		}
	}
	m.resolved[fqn] = expr
	return expr
}

// lookup resolves a symbol name for use inside the module.
func (m *moduleBuilder) lookup(fqn string, _ bool) (string, bool) {
	if expr, ok := m.locals[fqn]; ok {
		return expr, true
	}
	sym, ok := m.b.ctx.Universe.Lookup(fqn)
	if !ok {
		return "", false
	}
	loc, exported := m.b.location(sym)
	if !exported {
		// Global symbols are visible through the ambient namespace.
		return fqn, true
	}
	if loc.module == m.name {
		return "", false
	}
	return m.importExpression(fqn, loc), true
}

// toAST returns the finished module. Imports are ordered by module name.
func (m *moduleBuilder) toAST() *ast.Module {
	mod := &ast.Module{Name: m.name, Exports: m.exports}
	names := make([]string, 0, len(m.imports))
	for name := range m.imports {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		mod.Imports = append(mod.Imports, m.imports[name])
	}
	return mod
}
