// Package asttransform normalizes the declaration IR between building and
// fixing: it drops declarations that must not be emitted, canonicalizes array
// types and indexes parents.
package asttransform

import (
	"slices"

	"github.com/gnana997/ui5dts/pkg/ast"
	"github.com/gnana997/ui5dts/pkg/astbuild"
	"github.com/gnana997/ui5dts/pkg/genctx"
)

// Transform rewrites res in place and returns the parent index of the
// resulting trees.
func Transform(ctx *genctx.Context, res *astbuild.Result) ast.ParentIndex {
	removed := 0
	for _, m := range res.Modules {
		m.Exports = slices.DeleteFunc(m.Exports, func(e *ast.Export) bool {
			if !declarationVisible(e.Expression) {
				removed++
				return true
			}
			removed += filterMembers(e.Expression)
			return false
		})
	}
	for _, ns := range res.Globals {
		removed += filterMembers(ns)
	}

	var roots []ast.Node
	for _, m := range res.Modules {
		ast.RewriteTypes(m, canonicalArrays)
		roots = append(roots, m)
	}
	for _, ns := range res.Globals {
		ast.RewriteTypes(ns, canonicalArrays)
		roots = append(roots, ns)
	}

	ctx.Log().Debug("transformed declarations", "removed", removed)
	return ast.IndexParents(roots...)
}

func visible(v ast.Visibility) bool {
	return v == "" || v == ast.VisibilityPublic || v == ast.VisibilityProtected
}

func docVisibility(d *ast.Doc) ast.Visibility {
	if d == nil {
		return ""
	}
	return d.Visibility
}

func declarationVisible(d ast.Declaration) bool {
	switch v := d.(type) {
	case *ast.Namespace:
		return visible(docVisibility(v.Doc))
	case *ast.Class:
		return visible(docVisibility(v.Doc))
	case *ast.Interface:
		return visible(docVisibility(v.Doc))
	case *ast.Enum:
		return visible(docVisibility(v.Doc))
	case *ast.TypeAliasDeclaration:
		return visible(docVisibility(v.Doc))
	case *ast.Variable:
		return visible(v.Visibility)
	case *ast.FunctionDesc:
		return visible(v.Visibility)
	}
	return true
}

func hiddenVariable(v *ast.Variable) bool     { return !visible(v.Visibility) }
func hiddenFunction(f *ast.FunctionDesc) bool { return !visible(f.Visibility) }

// filterMembers removes hidden members below d and returns how many were
// removed.
func filterMembers(d ast.Declaration) int {
	removed := 0
	count := func(before, after int) { removed += before - after }

	switch v := d.(type) {
	case *ast.Namespace:
		n := len(v.Namespaces) + len(v.Classes) + len(v.Interfaces) + len(v.Enums) + len(v.TypeAliases)
		v.Namespaces = slices.DeleteFunc(v.Namespaces, func(x *ast.Namespace) bool { return !declarationVisible(x) })
		v.Classes = slices.DeleteFunc(v.Classes, func(x *ast.Class) bool { return !declarationVisible(x) })
		v.Interfaces = slices.DeleteFunc(v.Interfaces, func(x *ast.Interface) bool { return !declarationVisible(x) })
		v.Enums = slices.DeleteFunc(v.Enums, func(x *ast.Enum) bool { return !declarationVisible(x) })
		v.TypeAliases = slices.DeleteFunc(v.TypeAliases, func(x *ast.TypeAliasDeclaration) bool { return !declarationVisible(x) })
		count(n, len(v.Namespaces)+len(v.Classes)+len(v.Interfaces)+len(v.Enums)+len(v.TypeAliases))

		n = len(v.Functions) + len(v.Variables)
		v.Functions = slices.DeleteFunc(v.Functions, hiddenFunction)
		v.Variables = slices.DeleteFunc(v.Variables, hiddenVariable)
		count(n, len(v.Functions)+len(v.Variables))

		for _, member := range v.Members() {
			removed += filterMembers(member)
		}
	case *ast.Class:
		n := len(v.Constructors) + len(v.Props) + len(v.Methods)
		v.Constructors = slices.DeleteFunc(v.Constructors, hiddenFunction)
		v.Props = slices.DeleteFunc(v.Props, hiddenVariable)
		v.Methods = slices.DeleteFunc(v.Methods, hiddenFunction)
		count(n, len(v.Constructors)+len(v.Props)+len(v.Methods))
	case *ast.Interface:
		n := len(v.Props) + len(v.Methods)
		v.Props = slices.DeleteFunc(v.Props, hiddenVariable)
		v.Methods = slices.DeleteFunc(v.Methods, hiddenFunction)
		count(n, len(v.Props)+len(v.Methods))
	case *ast.Enum:
		n := len(v.Values)
		v.Values = slices.DeleteFunc(v.Values, hiddenVariable)
		count(n, len(v.Values))
	}
	return removed
}

// canonicalArrays replaces Array and Array<T> references with array types.
// Heritage clauses need the reference form.
func canonicalArrays(t ast.Type, usage ast.Usage) ast.Type {
	if usage == ast.UsageExtends || usage == ast.UsageImplements {
		return t
	}
	return ast.MapType(t, func(t ast.Type) ast.Type {
		ref, ok := t.(*ast.TypeReference)
		if !ok || ref.TypeName != "Array" || len(ref.TypeArguments) > 1 {
			return t
		}
		if len(ref.TypeArguments) == 0 {
			return &ast.ArrayType{ElementType: ast.Ref("any")}
		}
		return &ast.ArrayType{ElementType: ref.TypeArguments[0]}
	})
}
