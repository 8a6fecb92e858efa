// Package typeparser parses the JSDoc-style type expressions found in
// api.json files ("sap.m.Button|string[]", "function(Event):void",
// "Object<string,any>", ...). The parser is generic over the node type it
// produces: callers supply a Builder that constructs their own representation.
package typeparser

// Param is one parameter of a function type.
type Param[T any] struct {
	Type       T
	Optional   bool
	Repeatable bool
}

// FunctionSig describes a parsed `function(...)` type. This and New are only
// meaningful when the matching Has flag is set; Return likewise.
type FunctionSig[T any] struct {
	Params    []Param[T]
	Return    T
	HasReturn bool
	This      T
	HasThis   bool
	New       T
	HasNew    bool
}

// Field is one member of a record type `{name: T}`.
type Field[T any] struct {
	Name     string
	Type     T
	Optional bool
}

// Builder constructs the caller's type representation while parsing.
//
// NormalizeType is used for bare names (it may map aliases such as "long" or
// "*" to canonical types and add default type arguments), SimpleType for names
// that are the base of an explicit type application.
type Builder[T any] interface {
	Literal(lit string) T
	SimpleType(name string) T
	NormalizeType(name string) T
	Array(elem T) T
	Object(key, value T) T
	Set(elem T) T
	Promise(fulfilled T) T
	Function(sig FunctionSig[T]) T
	Structure(fields []Field[T]) T
	Union(types []T) T
	Nullable(t T) T
	Optional(t T) T
	Repeatable(t T) T
	TypeApplication(base T, args []T) T
}
