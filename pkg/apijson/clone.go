package apijson

import (
	"slices"

	"github.com/gnana997/ui5dts/pkg/ast"
)

// Clone returns a deep copy of the document. Generation mutates documents in
// place, so cached documents are only ever handed out as clones.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Symbols = cloneAll(d.Symbols, (*Symbol).Clone)
	return &cp
}

// Clone returns a deep copy of the symbol.
func (s *Symbol) Clone() *Symbol {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Export = cloneString(s.Export)
	cp.Doc = s.Doc.clone()
	cp.Extends = slices.Clone(s.Extends)
	cp.Implements = slices.Clone(s.Implements)
	cp.TypeParameters = cloneAll(s.TypeParameters, (*TypeParameter).Clone)
	cp.UI5Metadata = s.UI5Metadata.Clone()
	cp.Constructor = s.Constructor.Clone()
	cp.Properties = cloneAll(s.Properties, (*Property).Clone)
	cp.Methods = cloneAll(s.Methods, (*Method).Clone)
	cp.Events = cloneAll(s.Events, (*Event).Clone)
	cp.Type = s.Type.Clone()
	cp.Parameters = cloneAll(s.Parameters, (*Parameter).Clone)
	cp.ReturnValue = s.ReturnValue.Clone()
	cp.Throws = cloneAll(s.Throws, (*Throws).Clone)
	cp.Unknown = slices.Clone(s.Unknown)
	return &cp
}

func (d Doc) clone() Doc {
	cp := d
	if d.Deprecated != nil {
		n := *d.Deprecated
		cp.Deprecated = &n
	}
	if d.Experimental != nil {
		n := *d.Experimental
		cp.Experimental = &n
	}
	cp.References = slices.Clone(d.References)
	return cp
}

// Clone returns a deep copy, including the parsed type.
func (t *TypeExpr) Clone() *TypeExpr {
	if t == nil {
		return nil
	}
	return &TypeExpr{Raw: t.Raw, Parsed: ast.CloneType(t.Parsed)}
}

func (tp *TypeParameter) Clone() *TypeParameter {
	if tp == nil {
		return nil
	}
	cp := *tp
	cp.Type = tp.Type.Clone()
	cp.Default = tp.Default.Clone()
	return &cp
}

func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Type = p.Type.Clone()
	cp.Export = cloneString(p.Export)
	cp.Doc = p.Doc.clone()
	return &cp
}

func (m *Method) Clone() *Method {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Export = cloneString(m.Export)
	cp.TypeParameters = cloneAll(m.TypeParameters, (*TypeParameter).Clone)
	cp.Parameters = cloneAll(m.Parameters, (*Parameter).Clone)
	cp.ReturnValue = m.ReturnValue.Clone()
	cp.Throws = cloneAll(m.Throws, (*Throws).Clone)
	cp.Doc = m.Doc.clone()
	return &cp
}

func (p *Parameter) Clone() *Parameter {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Type = p.Type.Clone()
	cp.ParameterProperties = cloneAll(p.ParameterProperties, (*Parameter).Clone)
	cp.Doc = p.Doc.clone()
	return &cp
}

func (r *ReturnValue) Clone() *ReturnValue {
	if r == nil {
		return nil
	}
	return &ReturnValue{Type: r.Type.Clone(), Description: r.Description}
}

func (t *Throws) Clone() *Throws {
	if t == nil {
		return nil
	}
	return &Throws{Type: t.Type.Clone(), Description: t.Description}
}

func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Parameters = cloneAll(e.Parameters, (*Parameter).Clone)
	cp.Doc = e.Doc.clone()
	return &cp
}

func (m *UI5Metadata) Clone() *UI5Metadata {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Properties = cloneAll(m.Properties, func(p *MetaProperty) *MetaProperty {
		c := *p
		c.Type = p.Type.Clone()
		c.Methods = slices.Clone(p.Methods)
		c.Doc = p.Doc.clone()
		return &c
	})
	cp.Aggregations = cloneAll(m.Aggregations, func(a *MetaAggregation) *MetaAggregation {
		c := *a
		c.Type = a.Type.Clone()
		c.AltTypes = cloneAll(a.AltTypes, (*TypeExpr).Clone)
		c.Methods = slices.Clone(a.Methods)
		c.Doc = a.Doc.clone()
		return &c
	})
	cp.Associations = cloneAll(m.Associations, func(a *MetaAssociation) *MetaAssociation {
		c := *a
		c.Type = a.Type.Clone()
		c.Methods = slices.Clone(a.Methods)
		c.Doc = a.Doc.clone()
		return &c
	})
	cp.Events = cloneAll(m.Events, func(e *MetaEvent) *MetaEvent {
		c := *e
		c.Parameters = cloneAll(e.Parameters, (*Parameter).Clone)
		c.Methods = slices.Clone(e.Methods)
		c.Doc = e.Doc.clone()
		return &c
	})
	cp.SpecialSettings = cloneAll(m.SpecialSettings, func(s *MetaSpecialSetting) *MetaSpecialSetting {
		c := *s
		c.Type = s.Type.Clone()
		c.Doc = s.Doc.clone()
		return &c
	})
	cp.Unknown = slices.Clone(m.Unknown)
	return &cp
}

func cloneAll[S ~[]E, E any](s S, clone func(E) E) S {
	if s == nil {
		return nil
	}
	out := make(S, len(s))
	for i, e := range s {
		out[i] = clone(e)
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
