package jsonfix

import (
	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

const (
	propertyBindingInfo    = "sap.ui.base.ManagedObject.PropertyBindingInfo"
	aggregationBindingInfo = "sap.ui.base.ManagedObject.AggregationBindingInfo"
	baseEvent              = "sap.ui.base.Event"
)

// bindingTemplate admits binding strings such as "{/path}".
func bindingTemplate() ast.Type {
	return ast.Native("`{${string}}`")
}

// parsed returns a type expression whose IR type is already known.
func parsed(t ast.Type) *apijson.TypeExpr {
	return &apijson.TypeExpr{Parsed: t}
}

func typeOf(t *apijson.TypeExpr, fallback string) ast.Type {
	if t != nil && t.Parsed != nil {
		return ast.CloneType(t.Parsed)
	}
	return ast.Ref(fallback)
}

// AddConstructorSettingsInterfaces adds a $<Class>Settings interface for every
// ManagedObject class and types the constructor's settings parameter with it.
// The interfaces extend the settings of the superclass when that class is a
// ManagedObject as well.
func AddConstructorSettingsInterfaces(doc *apijson.Document, universe *apijson.TypeUniverse) {
	idx := index(doc)
	var added []*apijson.Symbol

	for _, sym := range doc.Symbols {
		if sym.Kind != apijson.KindClass || !universe.IsManagedObject(sym.Name) {
			continue
		}
		name := settingsName(sym.Name)
		retypeSettingsParameter(sym, name)
		if _, ok := idx[name]; ok {
			continue
		}

		settings := &apijson.Symbol{
			Kind:       apijson.KindInterface,
			Name:       name,
			Basename:   baseName(name),
			Module:     sym.Module,
			Visibility: ast.VisibilityPublic,
			Doc:        apijson.Doc{Since: sym.Since},
		}
		if sym.Module != "" {
			settings.Export = apijson.StringPtr(baseName(name))
		}
		if super := sym.Extends.First(); super != "" && universe.IsManagedObject(super) {
			settings.Extends = apijson.NameList{settingsName(super)}
		}
		if md := sym.UI5Metadata; md != nil {
			settings.Properties = settingsProperties(md)
		}
		idx[name] = settings
		added = append(added, settings)
	}
	doc.Symbols = append(doc.Symbols, added...)
}

func retypeSettingsParameter(sym *apijson.Symbol, settings string) {
	if sym.Constructor == nil {
		return
	}
	for _, p := range sym.Constructor.Parameters {
		if p.Name != "mSettings" {
			continue
		}
		p.Type = parsed(ast.Ref(settings))
		p.Type.Raw = settings
	}
}

func settingsProperties(md *apijson.UI5Metadata) []*apijson.Property {
	var props []*apijson.Property
	add := func(name string, t ast.Type, doc apijson.Doc) {
		props = append(props, &apijson.Property{
			Name:       name,
			Optional:   true,
			Visibility: ast.VisibilityPublic,
			Type:       parsed(t),
			Doc:        apijson.Doc{Description: doc.Description, Since: doc.Since, Deprecated: doc.Deprecated},
		})
	}

	for _, p := range md.Properties {
		if !apijson.IsVisible(p.Visibility) {
			continue
		}
		add(p.Name, ast.Union(typeOf(p.Type, "any"), ast.Ref(propertyBindingInfo), bindingTemplate()), p.Doc)
	}

	for _, a := range md.Aggregations {
		if !apijson.IsVisible(a.Visibility) {
			continue
		}
		members := []ast.Type{typeOf(a.Type, "sap.ui.core.Element")}
		for _, alt := range a.AltTypes {
			members = append(members, typeOf(alt, "any"))
		}
		if !apijson.Multiple(a.Cardinality) {
			t := ast.Union(members...)
			if len(a.AltTypes) > 0 {
				t = ast.Union(t, ast.Ref(propertyBindingInfo), bindingTemplate())
			}
			add(a.Name, t, a.Doc)
			continue
		}
		element := ast.Union(members...)
		add(a.Name, ast.Union(
			&ast.ArrayType{ElementType: element},
			ast.CloneType(element),
			ast.Ref(aggregationBindingInfo),
			bindingTemplate(),
		), a.Doc)
	}

	for _, a := range md.Associations {
		if !apijson.IsVisible(a.Visibility) {
			continue
		}
		target := ast.Union(typeOf(a.Type, "sap.ui.core.Element"), ast.Ref("string"))
		if apijson.Multiple(a.Cardinality) {
			add(a.Name, &ast.ArrayType{ElementType: target}, a.Doc)
		} else {
			add(a.Name, target, a.Doc)
		}
	}

	for _, e := range md.Events {
		if !apijson.IsVisible(e.Visibility) {
			continue
		}
		add(e.Name, &ast.FunctionType{
			Parameters: []*ast.Parameter{{Name: "event", Type: ast.Ref(baseEvent)}},
			ReturnType: ast.Ref("void"),
		}, e.Doc)
	}

	for _, s := range md.SpecialSettings {
		if s.Visibility != "" && s.Visibility != ast.VisibilityPublic {
			continue
		}
		add(s.Name, typeOf(s.Type, "any"), s.Doc)
	}
	return props
}

// AddEventParameterInterfaces adds, for every public event of a ManagedObject
// class, the interface <Class>$<Event>EventParameters and the typedef
// <Class>$<Event>Event.
func AddEventParameterInterfaces(doc *apijson.Document, universe *apijson.TypeUniverse) {
	idx := index(doc)
	var added []*apijson.Symbol

	for _, sym := range doc.Symbols {
		if sym.Kind != apijson.KindClass || sym.UI5Metadata == nil || !universe.IsManagedObject(sym.Name) {
			continue
		}
		for _, e := range sym.UI5Metadata.Events {
			if !apijson.IsVisible(e.Visibility) {
				continue
			}
			paramsName := eventParametersName(sym.Name, e.Name)
			if _, ok := idx[paramsName]; !ok {
				params := synthesizedType(sym, apijson.KindInterface, paramsName)
				for _, p := range e.Parameters {
					params.Properties = append(params.Properties, &apijson.Property{
						Name:       p.Name,
						Optional:   true,
						Visibility: ast.VisibilityPublic,
						Type:       parsed(typeOf(p.Type, "any")),
						Doc:        p.Doc,
					})
				}
				idx[paramsName] = params
				added = append(added, params)
			}

			evName := eventName(sym.Name, e.Name)
			if _, ok := idx[evName]; !ok {
				ev := synthesizedType(sym, apijson.KindTypedef, evName)
				ev.Type = parsed(ast.Ref(baseEvent, ast.Ref(paramsName), ast.Ref(sym.Name)))
				ev.Description = "Event object of the " + sym.Basename + "#" + e.Name + " event."
				idx[evName] = ev
				added = append(added, ev)
			}
		}
	}
	doc.Symbols = append(doc.Symbols, added...)
}

func synthesizedType(owner *apijson.Symbol, kind apijson.Kind, name string) *apijson.Symbol {
	sym := &apijson.Symbol{
		Kind:       kind,
		Name:       name,
		Basename:   baseName(name),
		Module:     owner.Module,
		Visibility: ast.VisibilityPublic,
	}
	if owner.Module != "" {
		sym.Export = apijson.StringPtr(baseName(name))
	}
	return sym
}
