package jsonfix

import (
	"log/slog"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

// typeParser parses the type expressions of one document.
type typeParser struct {
	builder *ast.TypeBuilder
	logger  *slog.Logger
}

// parse fills in t.Parsed. Expressions that cannot be parsed become any.
// Already parsed expressions are left alone.
func (p *typeParser) parse(t *apijson.TypeExpr, owner string) {
	if t == nil || t.Parsed != nil {
		return
	}
	if t.Raw == "" {
		t.Parsed = ast.Ref("any")
		return
	}
	parsed, err := p.builder.ParseType(t.Raw)
	if err != nil {
		p.logger.Warn("unparseable type expression, using any",
			"type", t.Raw, "fqn", owner, "error", err)
		parsed = ast.Ref("any")
	}
	t.Parsed = parsed
}

// ParseTypeExpressions parses every type expression of the document into an
// IR type: properties, parameters, return values, throws, type parameters and
// the types found in ui5-metadata.
func ParseTypeExpressions(doc *apijson.Document, typos map[string]string, logger *slog.Logger) {
	p := &typeParser{builder: &ast.TypeBuilder{Typos: typos}, logger: logger}
	for _, sym := range doc.Symbols {
		p.symbol(sym)
	}
}

func (p *typeParser) symbol(sym *apijson.Symbol) {
	p.typeParameters(sym.TypeParameters, sym.Name)
	p.parse(sym.Type, sym.Name)
	for _, prop := range sym.Properties {
		p.parse(prop.Type, sym.Name+"."+prop.Name)
	}
	if sym.Constructor != nil {
		p.method(sym.Constructor, sym.Name+".constructor")
	}
	for _, m := range sym.Methods {
		p.method(m, sym.Name+"."+m.Name)
	}
	for _, e := range sym.Events {
		p.parameters(e.Parameters, sym.Name+"#"+e.Name)
	}
	p.parameters(sym.Parameters, sym.Name)
	p.returnValue(sym.ReturnValue, sym.Name)
	for _, t := range sym.Throws {
		p.parse(t.Type, sym.Name)
	}
	if md := sym.UI5Metadata; md != nil {
		p.metadata(md, sym.Name)
	}
}

func (p *typeParser) method(m *apijson.Method, fqn string) {
	p.typeParameters(m.TypeParameters, fqn)
	p.parameters(m.Parameters, fqn)
	p.returnValue(m.ReturnValue, fqn)
	for _, t := range m.Throws {
		p.parse(t.Type, fqn)
	}
}

func (p *typeParser) typeParameters(tps []*apijson.TypeParameter, fqn string) {
	for _, tp := range tps {
		p.parse(tp.Type, fqn)
		p.parse(tp.Default, fqn)
	}
}

func (p *typeParser) returnValue(rv *apijson.ReturnValue, fqn string) {
	if rv != nil {
		p.parse(rv.Type, fqn)
	}
}

// parameters parses parameter types. A parameter documented with nested
// parameter properties gets an inline object type built from them.
func (p *typeParser) parameters(params []*apijson.Parameter, fqn string) {
	for _, param := range params {
		if param.Type == nil && len(param.ParameterProperties) > 0 {
			param.Type = apijson.NewTypeExpr("object")
		}
		p.parse(param.Type, fqn+"."+param.Name)
		if len(param.ParameterProperties) == 0 {
			continue
		}
		p.parameters(param.ParameterProperties, fqn+"."+param.Name)
		if isPlainObject(param.Type) {
			param.Type.Parsed = parameterPropertiesLiteral(param.ParameterProperties)
		}
	}
}

func isPlainObject(t *apijson.TypeExpr) bool {
	ref, ok := t.Parsed.(*ast.TypeReference)
	return ok && ref.TypeName == "object" && len(ref.TypeArguments) == 0
}

func parameterPropertiesLiteral(props apijson.ParameterProperties) *ast.TypeLiteral {
	lit := &ast.TypeLiteral{}
	for _, pp := range props {
		var typ ast.Type = ast.Ref("any")
		if pp.Type != nil && pp.Type.Parsed != nil {
			typ = pp.Type.Parsed
		}
		lit.Members = append(lit.Members, &ast.Variable{
			Name:     pp.Name,
			Type:     typ,
			Optional: pp.Optional,
			Doc:      &ast.Doc{Description: pp.Description},
		})
	}
	return lit
}

func (p *typeParser) metadata(md *apijson.UI5Metadata, fqn string) {
	for _, prop := range md.Properties {
		p.parse(prop.Type, fqn+"#"+prop.Name)
	}
	for _, agg := range md.Aggregations {
		p.parse(agg.Type, fqn+"#"+agg.Name)
		for _, alt := range agg.AltTypes {
			p.parse(alt, fqn+"#"+agg.Name)
		}
	}
	for _, assoc := range md.Associations {
		p.parse(assoc.Type, fqn+"#"+assoc.Name)
	}
	for _, e := range md.Events {
		p.parameters(e.Parameters, fqn+"#"+e.Name)
	}
	for _, s := range md.SpecialSettings {
		p.parse(s.Type, fqn+"#"+s.Name)
	}
}
