package apijson

import (
	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/gnana997/ui5dts/pkg/ast"
)

// TypeExpr is a JSDoc type expression. Raw is the text found in api.json;
// Parsed is filled in by the fixer and is never serialized.
type TypeExpr struct {
	Raw    string
	Parsed ast.Type
}

// NewTypeExpr returns an unparsed type expression.
func NewTypeExpr(raw string) *TypeExpr {
	return &TypeExpr{Raw: raw}
}

func (t *TypeExpr) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	var raw string
	if err := json.UnmarshalDecode(dec, &raw); err != nil {
		return err
	}
	t.Raw = raw
	t.Parsed = nil
	return nil
}

func (t TypeExpr) MarshalJSONTo(enc *jsontext.Encoder) error {
	return enc.WriteToken(jsontext.String(t.Raw))
}

// String returns the raw expression.
func (t *TypeExpr) String() string {
	if t == nil {
		return ""
	}
	return t.Raw
}

// NameList is a list of symbol names that api.json writes either as a single
// string or as an array.
type NameList []string

func (n *NameList) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	switch dec.PeekKind() {
	case '"':
		var single string
		if err := json.UnmarshalDecode(dec, &single); err != nil {
			return err
		}
		*n = NameList{single}
		return nil
	case '[':
		var list []string
		if err := json.UnmarshalDecode(dec, &list); err != nil {
			return err
		}
		*n = list
		return nil
	case 'n':
		_, err := dec.ReadToken()
		*n = nil
		return err
	}
	return errors.Newf("name list must be a string or an array, found %v", dec.PeekKind())
}

func (n NameList) MarshalJSONTo(enc *jsontext.Encoder) error {
	if len(n) == 1 {
		return enc.WriteToken(jsontext.String(n[0]))
	}
	return json.MarshalEncode(enc, []string(n))
}

// First returns the first name or "".
func (n NameList) First() string {
	if len(n) == 0 {
		return ""
	}
	return n[0]
}

// ParameterProperties is a JSON object of named parameters whose member order
// is significant (it is the rendering order of the generated type).
type ParameterProperties []*Parameter

func (pp *ParameterProperties) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() == 'n' {
		*pp = nil
		return nil
	}
	if tok.Kind() != '{' {
		return errors.Newf("parameter properties must be an object, found %v", tok.Kind())
	}

	var out ParameterProperties
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return err
		}
		p := &Parameter{}
		if err := json.UnmarshalDecode(dec, p); err != nil {
			return errors.Wrapf(err, "parameter property %q", name.String())
		}
		if p.Name == "" {
			p.Name = name.String()
		}
		out = append(out, p)
	}
	if _, err := dec.ReadToken(); err != nil {
		return err
	}
	*pp = out
	return nil
}

func (pp ParameterProperties) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, p := range pp {
		if err := enc.WriteToken(jsontext.String(p.Name)); err != nil {
			return err
		}
		if err := json.MarshalEncode(enc, p); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}
