package astbuild

import (
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/gnana997/ui5dts/pkg/ast"
)

var (
	// ErrNameConflict is returned when two declarations need the same name in
	// a scope where renaming is not possible.
	ErrNameConflict = errors.New("name conflict")

	// ErrUnknownSymbolKind is returned for symbols of a kind the builder does
	// not know. Dropping them would silently produce incomplete declarations.
	ErrUnknownSymbolKind = errors.New("unknown symbol kind")
)

// reservedGlobals are global names that local declarations must not shadow.
var reservedGlobals = []string{"Function", "Date", "String", "Number", "Boolean", "Object", "Element"}

// alternativeNames are preferred over a numeric suffix when the natural local
// name of a symbol is taken.
var alternativeNames = map[string]string{
	"sap.ui.core.Element": "UI5Element",
	"sap.ui.base.Object":  "BaseObject",
}

// scope tracks the local names of a module or namespace.
type scope struct {
	names map[string]ast.Declaration
	// reserved names may be used by non-renamable declarations only.
	reserved map[string]bool
}

func newScope(reserve bool) *scope {
	s := &scope{names: make(map[string]ast.Declaration), reserved: make(map[string]bool)}
	if reserve {
		for _, name := range reservedGlobals {
			s.reserved[name] = true
		}
	}
	return s
}

func (s *scope) taken(name string) bool {
	_, ok := s.names[name]
	return ok || s.reserved[name]
}

// claim records name for decl. A name held by a declaration that merges with
// decl is shared. Otherwise claiming a taken name fails.
func (s *scope) claim(name string, decl ast.Declaration) error {
	if existing, ok := s.names[name]; ok && existing != decl {
		if !mergeable(existing, decl) {
			return errors.Wrapf(ErrNameConflict, "%q is declared by %s and %s",
				name, describe(existing), describe(decl))
		}
		// Keep the non-namespace declaration as the owner of the name.
		if _, isNS := existing.(*ast.Namespace); !isNS {
			return nil
		}
	}
	s.names[name] = decl
	return nil
}

// hold takes name for an import binding.
func (s *scope) hold(name string) {
	s.names[name] = nil
}

// unique returns a free local name for fqn, preferring name, then the known
// alternative name, then name with a numeric suffix.
func (s *scope) unique(name, fqn string) string {
	if !s.taken(name) {
		return name
	}
	if alt, ok := alternativeNames[fqn]; ok && !s.taken(alt) {
		return alt
	}
	for i := 1; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !s.taken(candidate) {
			return candidate
		}
	}
}

// mergeable reports whether TypeScript merges the two declarations: a
// namespace with a class, function, enum or interface, and the interface and
// const halves of a static object.
func mergeable(a, b ast.Declaration) bool {
	_, aNS := a.(*ast.Namespace)
	_, bNS := b.(*ast.Namespace)
	if aNS || bNS {
		_, aVar := a.(*ast.Variable)
		_, bVar := b.(*ast.Variable)
		return !aVar && !bVar
	}
	if iface, ok := a.(*ast.Interface); ok && iface.StaticObject {
		_, isVar := b.(*ast.Variable)
		return isVar
	}
	if iface, ok := b.(*ast.Interface); ok && iface.StaticObject {
		_, isVar := a.(*ast.Variable)
		return isVar
	}
	return false
}

func describe(d ast.Declaration) string {
	if d == nil {
		return "an import"
	}
	if fqn := ast.FQNOf(d); fqn != "" {
		return string(d.Kind()) + " " + fqn
	}
	return string(d.Kind()) + " " + d.DeclName()
}
