package ast

// Children returns the direct child nodes of n in source order.
// Type parameters are not nodes; their constraint and default types are
// reported as children of the declaring node.
func Children(n Node) []Node {
	var out []Node
	addType := func(t Type) {
		if t != nil {
			out = append(out, t)
		}
	}
	addTypeParams := func(tps []*TypeParameter) {
		for _, tp := range tps {
			addType(tp.Constraint)
			addType(tp.Default)
		}
	}

	switch v := n.(type) {
	case *Module:
		for _, imp := range v.Imports {
			out = append(out, imp)
		}
		for _, exp := range v.Exports {
			out = append(out, exp)
		}
	case *Export:
		if v.Expression != nil {
			out = append(out, v.Expression)
		}
	case *Namespace:
		for _, d := range v.Members() {
			out = append(out, d)
		}
	case *Class:
		addTypeParams(v.TypeParameters)
		addType(v.Extends)
		for _, t := range v.Implements {
			addType(t)
		}
		for _, c := range v.Constructors {
			out = append(out, c)
		}
		for _, p := range v.Props {
			out = append(out, p)
		}
		for _, m := range v.Methods {
			out = append(out, m)
		}
	case *Interface:
		addTypeParams(v.TypeParameters)
		for _, t := range v.Extends {
			addType(t)
		}
		for _, p := range v.Props {
			out = append(out, p)
		}
		for _, m := range v.Methods {
			out = append(out, m)
		}
	case *Enum:
		addType(v.AliasFor)
		for _, val := range v.Values {
			out = append(out, val)
		}
	case *TypeAliasDeclaration:
		addTypeParams(v.TypeParameters)
		addType(v.Type)
	case *Variable:
		addType(v.Type)
	case *FunctionDesc:
		addTypeParams(v.TypeParameters)
		for _, p := range v.Parameters {
			out = append(out, p)
		}
		addType(v.ReturnType)
	case *Parameter:
		addType(v.Type)
	case *TypeReference:
		for _, t := range v.TypeArguments {
			addType(t)
		}
	case *ArrayType:
		addType(v.ElementType)
	case *UnionType:
		for _, t := range v.Types {
			addType(t)
		}
	case *IntersectionType:
		for _, t := range v.Types {
			addType(t)
		}
	case *TypeLiteral:
		for _, m := range v.Members {
			out = append(out, m)
		}
	case *FunctionType:
		addTypeParams(v.TypeParameters)
		addType(v.This)
		for _, p := range v.Parameters {
			out = append(out, p)
		}
		addType(v.ReturnType)
	}
	return out
}

// Inspect traverses the tree rooted at n in depth-first order. It calls f(n)
// and, if f returns true, descends into the children of n.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// ParentIndex maps every node below a root to its parent. It is built on
// demand instead of storing back-pointers in the nodes, so nodes can be
// cloned and re-parented freely.
type ParentIndex map[Node]Node

// IndexParents builds a ParentIndex for all given roots.
func IndexParents(roots ...Node) ParentIndex {
	idx := make(ParentIndex)
	for _, root := range roots {
		idx.add(root)
	}
	return idx
}

func (p ParentIndex) add(n Node) {
	for _, c := range Children(n) {
		p[c] = n
		p.add(c)
	}
}

// Parent returns the parent of n, or nil for roots and unknown nodes.
func (p ParentIndex) Parent(n Node) Node {
	return p[n]
}

// EnclosingModule walks up from n until it reaches a Module.
func (p ParentIndex) EnclosingModule(n Node) *Module {
	for cur := p[n]; cur != nil; cur = p[cur] {
		if m, ok := cur.(*Module); ok {
			return m
		}
	}
	return nil
}
