package apijson

// TypeUniverse is a read-only index of every symbol of a library and its
// dependencies, keyed by fully qualified name. Synthetic symbols (implicit
// namespaces) are not part of it.
type TypeUniverse struct {
	symbols map[string]*Symbol
	owner   map[string]string
}

// NewTypeUniverse indexes the given documents. For duplicate names the first
// document wins, so pass the target library first.
func NewTypeUniverse(docs ...*Document) *TypeUniverse {
	u := &TypeUniverse{
		symbols: make(map[string]*Symbol),
		owner:   make(map[string]string),
	}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for _, sym := range doc.Symbols {
			if sym.Synthetic {
				continue
			}
			if _, exists := u.symbols[sym.Name]; exists {
				continue
			}
			u.symbols[sym.Name] = sym
			u.owner[sym.Name] = doc.Library
		}
	}
	return u
}

// Lookup returns the symbol with the given name.
func (u *TypeUniverse) Lookup(name string) (*Symbol, bool) {
	if u == nil {
		return nil, false
	}
	sym, ok := u.symbols[name]
	return sym, ok
}

// Library returns the library that declares name.
func (u *TypeUniverse) Library(name string) string {
	if u == nil {
		return ""
	}
	return u.owner[name]
}

// Len returns the number of indexed symbols.
func (u *TypeUniverse) Len() int {
	if u == nil {
		return 0
	}
	return len(u.symbols)
}

// IsA reports whether the class name is base or (transitively) extends it.
func (u *TypeUniverse) IsA(name, base string) bool {
	seen := map[string]bool{}
	for name != "" && !seen[name] {
		if name == base {
			return true
		}
		seen[name] = true
		sym, ok := u.Lookup(name)
		if !ok {
			return false
		}
		name = sym.Extends.First()
	}
	return false
}

const managedObject = "sap.ui.base.ManagedObject"

// IsManagedObject reports whether name is a ManagedObject subclass.
func (u *TypeUniverse) IsManagedObject(name string) bool {
	return u.IsA(name, managedObject)
}

// IsStandardEnum reports whether name is an enum whose keys equal their values.
func (u *TypeUniverse) IsStandardEnum(name string) bool {
	sym, ok := u.Lookup(name)
	return ok && IsStandardEnum(sym)
}

// IsStandardEnum reports whether every value of the enum is a string equal to
// the member name. Such enums accept the member names as string literals.
// Members without a value count as named after themselves.
func IsStandardEnum(sym *Symbol) bool {
	if sym.Kind != KindEnum || sym.DeprecatedAliasFor != "" || len(sym.Properties) == 0 {
		return false
	}
	for _, p := range sym.Properties {
		if p.Value == nil {
			continue
		}
		if v, ok := p.Value.(string); !ok || v != p.Name {
			return false
		}
	}
	return true
}
