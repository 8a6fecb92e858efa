package jsonfix

import (
	"strings"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

// matchesBadSymbol reports whether name is listed. Entries ending in ".*"
// match every symbol below the prefix.
func matchesBadSymbol(list []string, name string) bool {
	for _, entry := range list {
		if prefix, ok := strings.CutSuffix(entry, ".*"); ok {
			if name == prefix || strings.HasPrefix(name, prefix+".") {
				return true
			}
			continue
		}
		if entry == name {
			return true
		}
	}
	return false
}

// RemoveBadSymbols drops symbols and methods blacklisted by the directives.
// Methods are listed as "Class#method" or "Class.method".
func RemoveBadSymbols(doc *apijson.Document, directives *apijson.Directives) {
	if len(directives.BadSymbols) > 0 {
		doc.Symbols = filter(doc.Symbols, func(sym *apijson.Symbol) bool {
			return !matchesBadSymbol(directives.BadSymbols, sym.Name)
		})
	}
	if len(directives.BadMethods) == 0 {
		return
	}
	bad := make(map[string]bool, len(directives.BadMethods))
	for _, m := range directives.BadMethods {
		bad[strings.Replace(m, "#", ".", 1)] = true
	}
	for _, sym := range doc.Symbols {
		sym.Methods = filter(sym.Methods, func(m *apijson.Method) bool {
			return !bad[sym.Name+"."+m.Name]
		})
	}
}

// RemoveRestrictedInterfaces removes interfaces from implements clauses that
// are blacklisted or not visible.
func RemoveRestrictedInterfaces(doc *apijson.Document, directives *apijson.Directives, universe *apijson.TypeUniverse) {
	for _, sym := range doc.Symbols {
		if sym.Kind != apijson.KindClass || len(sym.Implements) == 0 {
			continue
		}
		var kept apijson.NameList
		for _, name := range sym.Implements {
			if matchesBadSymbol(directives.BadInterfaces, name) {
				continue
			}
			if iface, ok := universe.Lookup(name); ok && !apijson.IsVisible(iface.Visibility) {
				continue
			}
			kept = append(kept, name)
		}
		sym.Implements = kept
	}
}

// RemoveRestrictedSymbols drops symbols that are neither public nor
// protected, and symbols marked tsSkip.
func RemoveRestrictedSymbols(doc *apijson.Document) {
	doc.Symbols = filter(doc.Symbols, func(sym *apijson.Symbol) bool {
		return keepMember(sym.Visibility, sym.TSSkip)
	})
}

// RemoveRestrictedMembers keeps only public and protected members. A member
// marked tsSkip is dropped regardless of its visibility.
func RemoveRestrictedMembers(doc *apijson.Document) {
	for _, sym := range doc.Symbols {
		sym.Properties = filter(sym.Properties, func(p *apijson.Property) bool {
			return keepMember(p.Visibility, p.TSSkip)
		})
		sym.Methods = filter(sym.Methods, func(m *apijson.Method) bool {
			return keepMember(m.Visibility, m.TSSkip)
		})
		sym.Events = filter(sym.Events, func(e *apijson.Event) bool {
			return keepMember(e.Visibility, false)
		})
		if c := sym.Constructor; c != nil && !keepMember(c.Visibility, c.TSSkip) {
			sym.Constructor = nil
		}
	}
}

func keepMember(v ast.Visibility, skip bool) bool {
	return !skip && apijson.IsVisible(v)
}

func filter[S ~[]E, E any](s S, keep func(E) bool) S {
	if s == nil {
		return nil
	}
	out := s[:0]
	for _, e := range s {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
