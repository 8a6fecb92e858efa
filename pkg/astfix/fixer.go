// Package astfix makes every signature of the declaration IR legal
// TypeScript. Constructors lose their names and return types, and signatures
// with optional parameters before required ones, or with omissible
// parameters, are split into overloads.
package astfix

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/gnana997/ui5dts/pkg/ast"
	"github.com/gnana997/ui5dts/pkg/astbuild"
	"github.com/gnana997/ui5dts/pkg/genctx"
)

// Fix repairs all signatures in res and returns the number of overloads
// added. parents locates the module of a fixed function for logging and may
// be nil.
func Fix(ctx *genctx.Context, res *astbuild.Result, parents ast.ParentIndex) int {
	f := &fixer{logger: ctx.Log().With("phase", "astfix"), parents: parents}
	for _, m := range res.Modules {
		f.fixModule(m)
	}
	for _, ns := range res.Globals {
		f.fixDeclaration(ns)
	}
	return f.added
}

type fixer struct {
	logger  *slog.Logger
	parents ast.ParentIndex
	added   int
}

// fixModule expands function exports in place. Exports are order
// sensitive, so the clones follow their original directly.
func (f *fixer) fixModule(m *ast.Module) {
	out := make([]*ast.Export, 0, len(m.Exports))
	for _, e := range m.Exports {
		out = append(out, e)
		fn, ok := e.Expression.(*ast.FunctionDesc)
		if !ok {
			f.fixDeclaration(e.Expression)
			continue
		}
		mandatory, variants := plan(fn)
		for _, v := range variants {
			cp := e.Clone()
			f.apply(cp.Expression.(*ast.FunctionDesc), fn, v)
			out = append(out, cp)
		}
		makeMandatory(fn, mandatory)
	}
	m.Exports = out
}

func (f *fixer) fixDeclaration(d ast.Declaration) {
	switch v := d.(type) {
	case *ast.Namespace:
		v.Functions = f.expand(v.Functions)
		for _, child := range v.Namespaces {
			f.fixDeclaration(child)
		}
		for _, c := range v.Classes {
			f.fixDeclaration(c)
		}
		for _, i := range v.Interfaces {
			f.fixDeclaration(i)
		}
	case *ast.Class:
		for _, c := range v.Constructors {
			c.Name = "constructor"
			c.ReturnType = nil
		}
		v.Constructors = f.expand(v.Constructors)
		v.Methods = f.expand(v.Methods)
	case *ast.Interface:
		v.Methods = f.expand(v.Methods)
	}
}

// expand returns fns with the overloads of each function inserted right
// after it.
func (f *fixer) expand(fns []*ast.FunctionDesc) []*ast.FunctionDesc {
	var out []*ast.FunctionDesc
	for _, fn := range fns {
		out = append(out, fn)
		mandatory, variants := plan(fn)
		for _, v := range variants {
			cp := fn.Clone()
			f.apply(cp, fn, v)
			out = append(out, cp)
		}
		makeMandatory(fn, mandatory)
	}
	return out
}

func makeMandatory(fn *ast.FunctionDesc, indices []int) {
	for _, i := range indices {
		fn.Parameters[i].Optional = false
	}
}

// variant describes an overload derived from a signature: the parameters it
// drops and the parameters it makes mandatory.
type variant struct {
	drop      []int
	mandatory []int
}

// plan returns the parameters of fn that must become mandatory and the
// overloads to add next to it. fn is not modified.
//
// Omissible parameters other than the last one yield one overload per
// non-empty subset with the subset removed. For every signature, optional
// parameters before the last required one are made mandatory, and one
// overload per non-empty subset of them drops the subset.
func plan(fn *ast.FunctionDesc) ([]int, []variant) {
	n := len(fn.Parameters)
	var omissible []int
	for i, p := range fn.Parameters {
		if p.Omissible && i < n-1 {
			omissible = append(omissible, i)
		}
	}

	seen := map[string]bool{"": true}
	var out []variant
	add := func(v variant) {
		key := indexKey(v.drop)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, v)
	}

	var mandatory []int
	drops := append([][]int{nil}, subsets(omissible)...)
	for _, drop := range drops {
		invalid := invalidOptionals(fn.Parameters, drop)
		if drop == nil {
			mandatory = invalid
		} else {
			add(variant{drop: drop, mandatory: invalid})
		}
		for _, s := range subsets(invalid) {
			add(variant{drop: union(drop, s), mandatory: without(invalid, s)})
		}
	}
	return mandatory, out
}

// apply turns a clone of the original signature into the overload v. origin
// is the indexed function fn was cloned from.
func (f *fixer) apply(fn, origin *ast.FunctionDesc, v variant) {
	for _, i := range v.mandatory {
		fn.Parameters[i].Optional = false
	}
	params := make([]*ast.Parameter, 0, len(fn.Parameters))
	var names []string
	for i, p := range fn.Parameters {
		if slices.Contains(v.drop, i) {
			continue
		}
		params = append(params, p)
		names = append(names, p.Name)
	}
	fn.Parameters = params

	f.added++
	attrs := []any{"fqn", fn.FQN, "parameters", strings.Join(names, ", ")}
	if m := f.parents.EnclosingModule(origin); m != nil {
		attrs = append(attrs, "module", m.Name)
	}
	f.logger.Warn("AUTOFIXING: added overload", attrs...)
}

// invalidOptionals returns the optional parameters that precede the last
// required one, ignoring the dropped ones. Rest parameters are never
// required.
func invalidOptionals(params []*ast.Parameter, drop []int) []int {
	lastRequired := -1
	for i, p := range params {
		if !slices.Contains(drop, i) && !p.Optional && !p.Rest {
			lastRequired = i
		}
	}
	var out []int
	for i := 0; i < lastRequired; i++ {
		if !slices.Contains(drop, i) && params[i].Optional {
			out = append(out, i)
		}
	}
	return out
}

// subsets returns all non-empty subsets of indices, ordered by size and then
// lexicographically.
func subsets(indices []int) [][]int {
	var out [][]int
	for k := 1; k <= len(indices); k++ {
		out = append(out, combinations(indices, k)...)
	}
	return out
}

// combinations returns the k-element combinations of items in lexicographic
// order of positions.
func combinations(items []int, k int) [][]int {
	var out [][]int
	pos := make([]int, k)
	for i := range pos {
		pos[i] = i
	}
	for {
		combo := make([]int, k)
		for i, p := range pos {
			combo[i] = items[p]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && pos[i] == len(items)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		pos[i]++
		for j := i + 1; j < k; j++ {
			pos[j] = pos[j-1] + 1
		}
	}
}

func union(a, b []int) []int {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}

func without(a, b []int) []int {
	var out []int
	for _, x := range a {
		if !slices.Contains(b, x) {
			out = append(out, x)
		}
	}
	return out
}

func indexKey(indices []int) string {
	parts := make([]string, len(indices))
	for i, x := range indices {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
