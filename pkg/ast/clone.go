package ast

// Clone returns a deep copy of the documentation.
func (d *Doc) Clone() *Doc {
	if d == nil {
		return nil
	}
	cp := *d
	if d.Deprecated != nil {
		n := *d.Deprecated
		cp.Deprecated = &n
	}
	if d.Experimental != nil {
		n := *d.Experimental
		cp.Experimental = &n
	}
	cp.References = append([]string(nil), d.References...)
	cp.Throws = append([]ThrowsDoc(nil), d.Throws...)
	return &cp
}

// CloneType returns a deep copy of a type expression.
func CloneType(t Type) Type {
	return MapType(t, func(t Type) Type { return t })
}

// CloneTypeParameters deep-copies a type parameter list.
func CloneTypeParameters(tps []*TypeParameter) []*TypeParameter {
	if tps == nil {
		return nil
	}
	out := make([]*TypeParameter, len(tps))
	for i, tp := range tps {
		out[i] = &TypeParameter{
			Name:       tp.Name,
			Constraint: CloneType(tp.Constraint),
			Default:    CloneType(tp.Default),
		}
	}
	return out
}

// Clone returns a deep copy of the parameter.
func (p *Parameter) Clone() *Parameter {
	cp := *p
	cp.Type = CloneType(p.Type)
	return &cp
}

// Clone returns a deep copy of the variable.
func (v *Variable) Clone() *Variable {
	cp := *v
	cp.Doc = v.Doc.Clone()
	cp.Type = CloneType(v.Type)
	return &cp
}

// Clone returns a deep copy of the function, including its parameters.
// Overload generation mutates the copy without touching the original.
func (f *FunctionDesc) Clone() *FunctionDesc {
	cp := *f
	cp.Doc = f.Doc.Clone()
	cp.TypeParameters = CloneTypeParameters(f.TypeParameters)
	cp.ReturnType = CloneType(f.ReturnType)
	cp.Parameters = make([]*Parameter, len(f.Parameters))
	for i, p := range f.Parameters {
		cp.Parameters[i] = p.Clone()
	}
	return &cp
}

// Clone returns a copy of the export whose expression is cloned as well when
// it is a function. Other expressions are shared.
func (e *Export) Clone() *Export {
	cp := *e
	if fn, ok := e.Expression.(*FunctionDesc); ok {
		cp.Expression = fn.Clone()
	}
	return &cp
}
