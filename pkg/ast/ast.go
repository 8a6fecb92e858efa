// Package ast defines the intermediate representation produced from a fixed
// api.json symbol list and consumed by the declaration generator.
//
// The node kinds are a closed set. Every node reports its kind through Kind(),
// and the string values are part of the contract with downstream consumers
// (snapshot tests, dumps), so they must not change.
package ast

// NodeKind is the tag of an IR node.
type NodeKind string

const (
	KindModule               NodeKind = "Module"
	KindNamespace            NodeKind = "Namespace"
	KindClass                NodeKind = "Class"
	KindInterface            NodeKind = "Interface"
	KindEnum                 NodeKind = "Enum"
	KindTypeAliasDeclaration NodeKind = "TypeAliasDeclaration"
	KindVariable             NodeKind = "Variable"
	KindFunctionDesc         NodeKind = "FunctionDesc"
	KindParameter            NodeKind = "Parameter"
	KindExport               NodeKind = "Export"
	KindImport               NodeKind = "Import"

	KindTypeReference          NodeKind = "TypeReference"
	KindArrayType              NodeKind = "ArrayType"
	KindUnionType              NodeKind = "UnionType"
	KindIntersectionType       NodeKind = "IntersectionType"
	KindTypeLiteral            NodeKind = "TypeLiteral"
	KindFunctionType           NodeKind = "FunctionType"
	KindLiteralType            NodeKind = "LiteralType"
	KindNativeTSTypeExpression NodeKind = "NativeTSTypeExpression"
)

// Node is implemented by every IR node.
type Node interface {
	Kind() NodeKind
	astNode()
}

// Declaration is a named entity that can live in a module or namespace scope.
type Declaration interface {
	Node
	DeclName() string
	SetDeclName(name string)
	declaration()
}

// Visibility mirrors the api.json visibility values.
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityProtected  Visibility = "protected"
	VisibilityPrivate    Visibility = "private"
	VisibilityRestricted Visibility = "restricted"
)

// Note carries a since/text pair for deprecated and experimental markers.
type Note struct {
	Since string
	Text  string
}

// ThrowsDoc documents one exception a function may raise.
type ThrowsDoc struct {
	Type        string
	Description string
}

// Doc holds the documentation attached to a declaration.
type Doc struct {
	Description  string
	Since        string
	Deprecated   *Note
	Experimental *Note
	References   []string
	Returns      string
	Throws       []ThrowsDoc
	Visibility   Visibility
}

// Module is a `declare module "name" { ... }` block.
type Module struct {
	Name    string
	Imports []*Import
	Exports []*Export
}

// ImportMapping binds an exported name of another module to a local alias.
type ImportMapping struct {
	Imported string
	Local    string
}

// Import is one import statement of a module.
type Import struct {
	Module      string
	DefaultName string
	Named       []ImportMapping
}

// Export wraps a declaration exported from a module.
type Export struct {
	// Name is the export name. For default exports it is the local name.
	Name       string
	AsDefault  bool
	Expression Declaration
}

// Namespace is a namespace block, either the ambient `declare namespace`
// root or a nested namespace inside a module or another namespace.
type Namespace struct {
	Name     string
	FQN      string
	Doc      *Doc
	Exported bool

	Namespaces  []*Namespace
	Classes     []*Class
	Interfaces  []*Interface
	Enums       []*Enum
	TypeAliases []*TypeAliasDeclaration
	Functions   []*FunctionDesc
	Variables   []*Variable
}

// IsEmpty reports whether the namespace declares nothing.
func (n *Namespace) IsEmpty() bool {
	return len(n.Namespaces) == 0 && len(n.Classes) == 0 && len(n.Interfaces) == 0 &&
		len(n.Enums) == 0 && len(n.TypeAliases) == 0 && len(n.Functions) == 0 && len(n.Variables) == 0
}

// Members returns the direct declarations of the namespace in emission order.
func (n *Namespace) Members() []Declaration {
	var out []Declaration
	for _, d := range n.Namespaces {
		out = append(out, d)
	}
	for _, d := range n.Classes {
		out = append(out, d)
	}
	for _, d := range n.Interfaces {
		out = append(out, d)
	}
	for _, d := range n.Enums {
		out = append(out, d)
	}
	for _, d := range n.TypeAliases {
		out = append(out, d)
	}
	for _, d := range n.Functions {
		out = append(out, d)
	}
	for _, d := range n.Variables {
		out = append(out, d)
	}
	return out
}

// Add appends a declaration to the matching member list.
func (n *Namespace) Add(d Declaration) {
	switch v := d.(type) {
	case *Namespace:
		n.Namespaces = append(n.Namespaces, v)
	case *Class:
		n.Classes = append(n.Classes, v)
	case *Interface:
		n.Interfaces = append(n.Interfaces, v)
	case *Enum:
		n.Enums = append(n.Enums, v)
	case *TypeAliasDeclaration:
		n.TypeAliases = append(n.TypeAliases, v)
	case *FunctionDesc:
		n.Functions = append(n.Functions, v)
	case *Variable:
		n.Variables = append(n.Variables, v)
	}
}

// TypeParameter is a generic parameter of a class, interface, alias or function.
type TypeParameter struct {
	Name       string
	Constraint Type
	Default    Type
}

// Class is a class declaration.
type Class struct {
	Name           string
	FQN            string
	Doc            *Doc
	TypeParameters []*TypeParameter
	Extends        Type
	Implements     []Type
	// ImplementsFQName keeps the original interface names after Implements has
	// been rewritten to local names; the nominal marker properties use them.
	ImplementsFQName []string
	Abstract         bool
	Final            bool
	Constructors     []*FunctionDesc
	Props            []*Variable
	Methods          []*FunctionDesc
}

// Interface is an interface declaration.
type Interface struct {
	Name           string
	FQN            string
	Doc            *Doc
	TypeParameters []*TypeParameter
	Extends        []Type
	Props          []*Variable
	Methods        []*FunctionDesc
	// Nominal interfaces get an __implements__ marker property.
	Nominal bool
	// StaticObject marks the interface half of an object/const pair.
	StaticObject bool
}

// Enum is an enum declaration. When AliasFor is set the enum is a deprecated
// alias of another enum and has no values of its own.
type Enum struct {
	Name     string
	FQN      string
	Doc      *Doc
	Values   []*Variable
	Standard bool
	AliasFor Type
}

// TypeAliasDeclaration is a `type X = ...` declaration.
type TypeAliasDeclaration struct {
	Name           string
	FQN            string
	Doc            *Doc
	TypeParameters []*TypeParameter
	Type           Type
}

// Variable is a property, field, enum member or const.
type Variable struct {
	Name       string
	FQN        string
	Doc        *Doc
	Type       Type
	Optional   bool
	Static     bool
	Readonly   bool
	Const      bool
	Value      any
	Visibility Visibility
}

// FunctionDesc is a function, method or constructor signature.
type FunctionDesc struct {
	Name           string
	FQN            string
	Doc            *Doc
	TypeParameters []*TypeParameter
	Parameters     []*Parameter
	ReturnType     Type
	Static         bool
	Abstract       bool
	Optional       bool
	Visibility     Visibility
	IsConstructor  bool
}

// Parameter is a function parameter.
type Parameter struct {
	Name        string
	Type        Type
	Optional    bool
	Omissible   bool
	Rest        bool
	Description string
}

func (*Module) Kind() NodeKind               { return KindModule }
func (*Namespace) Kind() NodeKind            { return KindNamespace }
func (*Class) Kind() NodeKind                { return KindClass }
func (*Interface) Kind() NodeKind            { return KindInterface }
func (*Enum) Kind() NodeKind                 { return KindEnum }
func (*TypeAliasDeclaration) Kind() NodeKind { return KindTypeAliasDeclaration }
func (*Variable) Kind() NodeKind             { return KindVariable }
func (*FunctionDesc) Kind() NodeKind         { return KindFunctionDesc }
func (*Parameter) Kind() NodeKind            { return KindParameter }
func (*Export) Kind() NodeKind               { return KindExport }
func (*Import) Kind() NodeKind               { return KindImport }

func (*Module) astNode()               {}
func (*Namespace) astNode()            {}
func (*Class) astNode()                {}
func (*Interface) astNode()            {}
func (*Enum) astNode()                 {}
func (*TypeAliasDeclaration) astNode() {}
func (*Variable) astNode()             {}
func (*FunctionDesc) astNode()         {}
func (*Parameter) astNode()            {}
func (*Export) astNode()               {}
func (*Import) astNode()               {}

func (n *Namespace) DeclName() string            { return n.Name }
func (n *Class) DeclName() string                { return n.Name }
func (n *Interface) DeclName() string            { return n.Name }
func (n *Enum) DeclName() string                 { return n.Name }
func (n *TypeAliasDeclaration) DeclName() string { return n.Name }
func (n *Variable) DeclName() string             { return n.Name }
func (n *FunctionDesc) DeclName() string         { return n.Name }

func (n *Namespace) SetDeclName(name string)            { n.Name = name }
func (n *Class) SetDeclName(name string)                { n.Name = name }
func (n *Interface) SetDeclName(name string)            { n.Name = name }
func (n *Enum) SetDeclName(name string)                 { n.Name = name }
func (n *TypeAliasDeclaration) SetDeclName(name string) { n.Name = name }
func (n *Variable) SetDeclName(name string)             { n.Name = name }
func (n *FunctionDesc) SetDeclName(name string)         { n.Name = name }

func (*Namespace) declaration()            {}
func (*Class) declaration()                {}
func (*Interface) declaration()            {}
func (*Enum) declaration()                 {}
func (*TypeAliasDeclaration) declaration() {}
func (*Variable) declaration()             {}
func (*FunctionDesc) declaration()         {}

var (
	_ Declaration = (*Namespace)(nil)
	_ Declaration = (*Class)(nil)
	_ Declaration = (*Interface)(nil)
	_ Declaration = (*Enum)(nil)
	_ Declaration = (*TypeAliasDeclaration)(nil)
	_ Declaration = (*Variable)(nil)
	_ Declaration = (*FunctionDesc)(nil)
)

// FQNOf returns the fully qualified name recorded on a declaration, if any.
func FQNOf(d Declaration) string {
	switch v := d.(type) {
	case *Namespace:
		return v.FQN
	case *Class:
		return v.FQN
	case *Interface:
		return v.FQN
	case *Enum:
		return v.FQN
	case *TypeAliasDeclaration:
		return v.FQN
	case *Variable:
		return v.FQN
	case *FunctionDesc:
		return v.FQN
	}
	return ""
}
