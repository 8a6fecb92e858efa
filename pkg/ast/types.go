package ast

// Type is implemented by all type expression nodes.
type Type interface {
	Node
	astType()
}

// TypeReference names a type, optionally with type arguments.
// A TypeName of the form "module:sap/x/Y" refers to the default export of a
// module rather than to a declared type.
type TypeReference struct {
	TypeName      string
	TypeArguments []Type
	// IsStandardEnum is set when the referenced type is an enum whose members
	// carry their own names as values; such enums accept string keys as well.
	IsStandardEnum bool
}

// ArrayType is `T[]`. Variadic marks the element type of a rest parameter.
type ArrayType struct {
	ElementType Type
	Variadic    bool
}

// UnionType is `A | B`.
type UnionType struct {
	Types []Type
}

// IntersectionType is `A & B`.
type IntersectionType struct {
	Types []Type
}

// TypeLiteral is an inline object type `{ a: T; b?: U }`.
type TypeLiteral struct {
	Members []*Variable
}

// FunctionType is a function signature used as a type.
type FunctionType struct {
	TypeParameters []*TypeParameter
	Parameters     []*Parameter
	ReturnType     Type
	This           Type
	IsConstructor  bool
}

// LiteralType is a string, number or boolean literal type, stored verbatim.
type LiteralType struct {
	Literal string
}

// NativeTSTypeExpression is TypeScript syntax that is emitted as-is.
type NativeTSTypeExpression struct {
	Expression string
}

func (*TypeReference) Kind() NodeKind          { return KindTypeReference }
func (*ArrayType) Kind() NodeKind              { return KindArrayType }
func (*UnionType) Kind() NodeKind              { return KindUnionType }
func (*IntersectionType) Kind() NodeKind       { return KindIntersectionType }
func (*TypeLiteral) Kind() NodeKind            { return KindTypeLiteral }
func (*FunctionType) Kind() NodeKind           { return KindFunctionType }
func (*LiteralType) Kind() NodeKind            { return KindLiteralType }
func (*NativeTSTypeExpression) Kind() NodeKind { return KindNativeTSTypeExpression }

func (*TypeReference) astNode()          {}
func (*ArrayType) astNode()              {}
func (*UnionType) astNode()              {}
func (*IntersectionType) astNode()       {}
func (*TypeLiteral) astNode()            {}
func (*FunctionType) astNode()           {}
func (*LiteralType) astNode()            {}
func (*NativeTSTypeExpression) astNode() {}

func (*TypeReference) astType()          {}
func (*ArrayType) astType()              {}
func (*UnionType) astType()              {}
func (*IntersectionType) astType()       {}
func (*TypeLiteral) astType()            {}
func (*FunctionType) astType()           {}
func (*LiteralType) astType()            {}
func (*NativeTSTypeExpression) astType() {}

// Ref is shorthand for a TypeReference without arguments.
func Ref(name string, args ...Type) *TypeReference {
	return &TypeReference{TypeName: name, TypeArguments: args}
}

// Native is shorthand for a NativeTSTypeExpression.
func Native(expr string) *NativeTSTypeExpression {
	return &NativeTSTypeExpression{Expression: expr}
}

// Union builds a union of the given types. Nested unions are flattened and a
// single member is returned unwrapped.
func Union(types ...Type) Type {
	var flat []Type
	for _, t := range types {
		if t == nil {
			continue
		}
		if u, ok := t.(*UnionType); ok {
			flat = append(flat, u.Types...)
			continue
		}
		flat = append(flat, t)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return &UnionType{Types: flat}
}

// IsAny reports whether t is the plain `any` type.
func IsAny(t Type) bool {
	ref, ok := t.(*TypeReference)
	return ok && ref.TypeName == "any" && len(ref.TypeArguments) == 0
}
