package ast

// Usage describes the syntactic position a type occurs in. Name resolution
// and rendering depend on it: enum keys are only accepted for parameters and
// properties, and ambient heritage clauses may not use import() types.
type Usage string

const (
	UsageExtends       Usage = "extends"
	UsageImplements    Usage = "implements"
	UsageParameter     Usage = "parameter"
	UsageReturnValue   Usage = "returnValue"
	UsageProperty      Usage = "property"
	UsageConst         Usage = "const"
	UsageAlias         Usage = "alias"
	UsageTypeParameter Usage = "typeParameter"
)

// TypeRewriter replaces a type found in the given usage position.
type TypeRewriter func(t Type, usage Usage) Type

// RewriteTypes applies f to every top-level type slot reachable from n,
// replacing each slot with the result. Nested declarations are visited as
// well; nested types inside a slot are left to f.
func RewriteTypes(n Node, f TypeRewriter) {
	apply := func(t Type, u Usage) Type {
		if t == nil {
			return nil
		}
		return f(t, u)
	}
	rewriteTPs := func(tps []*TypeParameter) {
		for _, tp := range tps {
			tp.Constraint = apply(tp.Constraint, UsageTypeParameter)
			tp.Default = apply(tp.Default, UsageTypeParameter)
		}
	}

	switch v := n.(type) {
	case *Module:
		for _, e := range v.Exports {
			RewriteTypes(e, f)
		}
	case *Export:
		if v.Expression != nil {
			RewriteTypes(v.Expression, f)
		}
	case *Namespace:
		for _, d := range v.Members() {
			RewriteTypes(d, f)
		}
	case *Class:
		rewriteTPs(v.TypeParameters)
		v.Extends = apply(v.Extends, UsageExtends)
		for i := range v.Implements {
			v.Implements[i] = apply(v.Implements[i], UsageImplements)
		}
		for _, c := range v.Constructors {
			RewriteTypes(c, f)
		}
		for _, p := range v.Props {
			RewriteTypes(p, f)
		}
		for _, m := range v.Methods {
			RewriteTypes(m, f)
		}
	case *Interface:
		rewriteTPs(v.TypeParameters)
		for i := range v.Extends {
			v.Extends[i] = apply(v.Extends[i], UsageExtends)
		}
		for _, p := range v.Props {
			RewriteTypes(p, f)
		}
		for _, m := range v.Methods {
			RewriteTypes(m, f)
		}
	case *Enum:
		v.AliasFor = apply(v.AliasFor, UsageAlias)
	case *TypeAliasDeclaration:
		rewriteTPs(v.TypeParameters)
		v.Type = apply(v.Type, UsageAlias)
	case *Variable:
		if v.Const {
			v.Type = apply(v.Type, UsageConst)
		} else {
			v.Type = apply(v.Type, UsageProperty)
		}
	case *FunctionDesc:
		rewriteTPs(v.TypeParameters)
		for _, p := range v.Parameters {
			p.Type = apply(p.Type, UsageParameter)
		}
		v.ReturnType = apply(v.ReturnType, UsageReturnValue)
	}
}

// MapType rebuilds t bottom-up, passing each node through f after its
// children have been mapped. Parameter and member containers are copied.
func MapType(t Type, f func(Type) Type) Type {
	if t == nil {
		return nil
	}
	switch v := t.(type) {
	case *TypeReference:
		cp := *v
		cp.TypeArguments = mapTypes(v.TypeArguments, f)
		return f(&cp)
	case *ArrayType:
		cp := *v
		cp.ElementType = MapType(v.ElementType, f)
		return f(&cp)
	case *UnionType:
		return f(&UnionType{Types: mapTypes(v.Types, f)})
	case *IntersectionType:
		return f(&IntersectionType{Types: mapTypes(v.Types, f)})
	case *TypeLiteral:
		cp := &TypeLiteral{}
		for _, m := range v.Members {
			mc := *m
			mc.Type = MapType(m.Type, f)
			cp.Members = append(cp.Members, &mc)
		}
		return f(cp)
	case *FunctionType:
		cp := *v
		cp.This = MapType(v.This, f)
		cp.ReturnType = MapType(v.ReturnType, f)
		cp.Parameters = nil
		for _, p := range v.Parameters {
			pc := *p
			pc.Type = MapType(p.Type, f)
			cp.Parameters = append(cp.Parameters, &pc)
		}
		return f(&cp)
	case *LiteralType:
		cp := *v
		return f(&cp)
	case *NativeTSTypeExpression:
		cp := *v
		return f(&cp)
	}
	return f(t)
}

func mapTypes(ts []Type, f func(Type) Type) []Type {
	if ts == nil {
		return nil
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = MapType(t, f)
	}
	return out
}
