package astbuild

import (
	"strings"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

// lookupFunc maps a symbol name to the expression naming it in the current
// scope. heritage is set for the top-level type of an extends or implements
// clause, where only entity names are legal.
type lookupFunc func(fqn string, heritage bool) (string, bool)

// resolveTypes rewrites every symbol reference below n with lookup.
func (b *Builder) resolveTypes(n ast.Node, lookup lookupFunc) {
	ast.RewriteTypes(n, func(t ast.Type, usage ast.Usage) ast.Type {
		heritage := usage == ast.UsageExtends || usage == ast.UsageImplements
		if ref, ok := t.(*ast.TypeReference); ok && heritage {
			cp := *ref
			cp.TypeArguments = nil
			for _, arg := range ref.TypeArguments {
				cp.TypeArguments = append(cp.TypeArguments, b.resolveNested(arg, lookup, n))
			}
			return b.resolveRef(&cp, true, lookup, n)
		}
		return b.resolveNested(t, lookup, n)
	})
}

func (b *Builder) resolveNested(t ast.Type, lookup lookupFunc, in ast.Node) ast.Type {
	return ast.MapType(t, func(t ast.Type) ast.Type {
		if ref, ok := t.(*ast.TypeReference); ok {
			return b.resolveRef(ref, false, lookup, in)
		}
		return t
	})
}

// typeKinds are the symbol kinds that declare a TypeScript type.
var typeKinds = map[apijson.Kind]bool{
	apijson.KindClass:     true,
	apijson.KindInterface: true,
	apijson.KindEnum:      true,
	apijson.KindTypedef:   true,
	apijson.KindObject:    true,
}

func (b *Builder) resolveRef(ref *ast.TypeReference, heritage bool, lookup lookupFunc, in ast.Node) ast.Type {
	name := ref.TypeName
	if !needsResolution(name) {
		return ref
	}

	sym, known := b.ctx.Universe.Lookup(name)
	if strings.HasPrefix(name, modulePrefix) && (!known || !typeKinds[sym.Kind]) {
		// Rendered as the type of the module itself.
		return ref
	}
	if known {
		if expr, ok := lookup(name, heritage); ok {
			return &ast.TypeReference{
				TypeName:       expr,
				TypeArguments:  ref.TypeArguments,
				IsStandardEnum: apijson.IsStandardEnum(sym),
			}
		}
	} else if isKnownGlobal(name) {
		return ref
	}

	owner := ""
	if d, ok := in.(ast.Declaration); ok {
		owner = ast.FQNOf(d)
	}
	b.logger.Warn("unresolved type reference", "name", name, "in", owner)
	if heritage {
		return ast.Ref("Object")
	}
	return ast.Native("/* was: " + name + " */ any")
}

// globalLookup resolves names inside the ambient namespace scope. Symbols of
// the same namespace path are named relative to it unless the first segment
// of the relative name is shadowed on the way. Module exports are reached
// through import types, which heritage clauses cannot use.
func (b *Builder) globalLookup(scope string) lookupFunc {
	return func(fqn string, heritage bool) (string, bool) {
		sym, ok := b.ctx.Universe.Lookup(fqn)
		if !ok {
			return "", false
		}
		if loc, exported := b.location(sym); exported {
			if heritage {
				return "", false
			}
			expr := `import("` + loc.module + `")`
			if loc.export == "" {
				return expr + ".default", true
			}
			return expr + "." + loc.export, true
		}
		return b.relativeName(scope, fqn), true
	}
}

func (b *Builder) relativeName(scope, fqn string) string {
	scopeParts := strings.Split(scope, ".")
	parts := strings.Split(fqn, ".")
	common := 0
	for common < len(scopeParts) && common < len(parts)-1 && scopeParts[common] == parts[common] {
		common++
	}
	if common == 0 {
		return fqn
	}
	first := parts[common]
	for depth := len(scopeParts); depth > common; depth-- {
		if b.declared(strings.Join(scopeParts[:depth], ".") + "." + first) {
			return fqn
		}
	}
	return strings.Join(parts[common:], ".")
}

// declared reports whether name is a symbol of the library or one of its
// dependencies, including namespaces created by the fixer.
func (b *Builder) declared(name string) bool {
	if _, ok := b.symbols[name]; ok {
		return true
	}
	_, ok := b.ctx.Universe.Lookup(name)
	return ok
}
