package jsonfix

import (
	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
)

// accessorFactory collects the generated methods of one class.
type accessorFactory struct {
	class    *apijson.Symbol
	existing map[string]bool
	methods  []*apijson.Method
}

func (f *accessorFactory) add(m *apijson.Method) {
	if f.existing[m.Name] {
		return
	}
	f.existing[m.Name] = true
	if m.Visibility == "" {
		m.Visibility = ast.VisibilityPublic
	}
	m.Generated = true
	f.methods = append(f.methods, m)
}

func param(name, typ string, optional bool, description string) *apijson.Parameter {
	return &apijson.Parameter{
		Name:     name,
		Type:     apijson.NewTypeExpr(typ),
		Optional: optional,
		Doc:      apijson.Doc{Description: description},
	}
}

func returns(typ, description string) *apijson.ReturnValue {
	return &apijson.ReturnValue{Type: apijson.NewTypeExpr(typ), Description: description}
}

const thisReturn = "this"

// AddManagedObjectAccessors synthesizes the accessor methods that UI5
// generates at runtime for ui5-metadata properties, aggregations,
// associations and events. Methods that are already documented are kept as
// they are.
func AddManagedObjectAccessors(doc *apijson.Document, universe *apijson.TypeUniverse) {
	for _, sym := range doc.Symbols {
		if sym.Kind != apijson.KindClass || sym.UI5Metadata == nil {
			continue
		}
		if !universe.IsManagedObject(sym.Name) {
			continue
		}
		f := &accessorFactory{class: sym, existing: make(map[string]bool)}
		for _, m := range sym.Methods {
			f.existing[m.Name] = true
		}
		f.properties(sym.UI5Metadata.Properties)
		f.aggregations(sym.UI5Metadata.Aggregations)
		f.associations(sym.UI5Metadata.Associations)
		f.events(sym.UI5Metadata.Events)
		sym.Methods = append(sym.Methods, f.methods...)
	}
}

func (f *accessorFactory) properties(props []*apijson.MetaProperty) {
	for _, p := range props {
		if !apijson.IsVisible(p.Visibility) {
			continue
		}
		typ := p.Type.String()
		if typ == "" {
			typ = "any"
		}
		n := capitalize(p.Name)
		f.add(&apijson.Method{
			Name:        "get" + n,
			ReturnValue: returns(typ, "Value of property "+quote(p.Name)),
			Doc:         apijson.Doc{Description: "Gets current value of property " + quote(p.Name) + ".", Since: p.Since, Deprecated: p.Deprecated},
		})
		f.add(&apijson.Method{
			Name:        "set" + n,
			Parameters:  []*apijson.Parameter{param(p.Name, typ, false, "New value for property "+quote(p.Name))},
			ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
			Doc:         apijson.Doc{Description: "Sets a new value for property " + quote(p.Name) + ".", Since: p.Since, Deprecated: p.Deprecated},
		})
	}
}

func (f *accessorFactory) aggregations(aggs []*apijson.MetaAggregation) {
	for _, a := range aggs {
		if !apijson.IsVisible(a.Visibility) {
			continue
		}
		typ := a.Type.String()
		if typ == "" {
			typ = "sap.ui.core.Element"
		}
		plural := capitalize(a.Name)
		doc := func(text string) apijson.Doc {
			return apijson.Doc{Description: text, Since: a.Since, Deprecated: a.Deprecated}
		}

		if !apijson.Multiple(a.Cardinality) {
			f.add(&apijson.Method{
				Name:        "get" + plural,
				ReturnValue: returns(typ, ""),
				Doc:         doc("Gets content of aggregation " + quote(a.Name) + "."),
			})
			f.add(&apijson.Method{
				Name:        "set" + plural,
				Parameters:  []*apijson.Parameter{param(a.Name, typ, false, "The "+a.Name+" to set")},
				ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
				Doc:         doc("Sets the aggregated " + quote(a.Name) + "."),
			})
			f.add(&apijson.Method{
				Name:        "destroy" + plural,
				ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
				Doc:         doc("Destroys the " + a.Name + " in the aggregation " + quote(a.Name) + "."),
			})
			continue
		}

		singular := a.Singular
		if singular == "" {
			singular = a.Name
		}
		s := capitalize(singular)
		f.add(&apijson.Method{
			Name:        "get" + plural,
			ReturnValue: returns(typ+"[]", ""),
			Doc:         doc("Gets content of aggregation " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:        "add" + s,
			Parameters:  []*apijson.Parameter{param(singular, typ, false, "The "+singular+" to add; if empty, nothing is inserted")},
			ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
			Doc:         doc("Adds some " + singular + " to the aggregation " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name: "insert" + s,
			Parameters: []*apijson.Parameter{
				param(singular, typ, false, "The "+singular+" to insert; if empty, nothing is inserted"),
				param("index", "int", false, "The 0-based index the "+singular+" should be inserted at"),
			},
			ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
			Doc:         doc("Inserts a " + singular + " into the aggregation " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:        "remove" + s,
			Parameters:  []*apijson.Parameter{param(singular, "int|string|"+typ, false, "The "+singular+" to remove or its index or id")},
			ReturnValue: returns(typ+"|null", "The removed "+singular+" or null"),
			Doc:         doc("Removes a " + singular + " from the aggregation " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:        "removeAll" + plural,
			ReturnValue: returns(typ+"[]", "An array of the removed elements (might be empty)"),
			Doc:         doc("Removes all the controls from the aggregation " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:        "indexOf" + s,
			Parameters:  []*apijson.Parameter{param(singular, typ, false, "The "+singular+" whose index is looked for")},
			ReturnValue: returns("int", "The index of the provided control in the aggregation if found, or -1 otherwise"),
			Doc:         doc("Checks for the provided " + quote(typ) + " in the aggregation " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:        "destroy" + plural,
			ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
			Doc:         doc("Destroys all the " + a.Name + " in the aggregation " + quote(a.Name) + "."),
		})
	}
}

const idType = "sap.ui.core.ID"

func (f *accessorFactory) associations(assocs []*apijson.MetaAssociation) {
	for _, a := range assocs {
		if !apijson.IsVisible(a.Visibility) {
			continue
		}
		typ := a.Type.String()
		if typ == "" {
			typ = "sap.ui.core.Element"
		}
		plural := capitalize(a.Name)
		doc := func(text string) apijson.Doc {
			return apijson.Doc{Description: text, Since: a.Since, Deprecated: a.Deprecated}
		}

		if !apijson.Multiple(a.Cardinality) {
			f.add(&apijson.Method{
				Name:        "get" + plural,
				ReturnValue: returns(idType+"|null", ""),
				Doc:         doc("ID of the element which is the current target of the association " + quote(a.Name) + ", or null."),
			})
			f.add(&apijson.Method{
				Name:        "set" + plural,
				Parameters:  []*apijson.Parameter{param(a.Name, idType+"|"+typ, false, "ID of an element which becomes the new target of this "+a.Name+" association; alternatively, an element instance may be given")},
				ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
				Doc:         doc("Sets the associated " + quote(a.Name) + "."),
			})
			continue
		}

		singular := a.Singular
		if singular == "" {
			singular = a.Name
		}
		s := capitalize(singular)
		f.add(&apijson.Method{
			Name:        "get" + plural,
			ReturnValue: returns(idType+"[]", ""),
			Doc:         doc("Returns array of IDs of the elements which are the current targets of the association " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:        "add" + s,
			Parameters:  []*apijson.Parameter{param(singular, idType+"|"+typ, false, "The "+singular+" to add; if empty, nothing is inserted")},
			ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
			Doc:         doc("Adds some " + singular + " into the association " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:        "remove" + s,
			Parameters:  []*apijson.Parameter{param(singular, "int|"+idType+"|"+typ, false, "The "+singular+" to be removed or its index or ID")},
			ReturnValue: returns(idType+"|null", "The removed "+singular+" or null"),
			Doc:         doc("Removes an " + singular + " from the association named " + quote(a.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:        "removeAll" + plural,
			ReturnValue: returns(idType+"[]", "An array of the removed elements (might be empty)"),
			Doc:         doc("Removes all the controls in the association named " + quote(a.Name) + "."),
		})
	}
}

func (f *accessorFactory) events(events []*apijson.MetaEvent) {
	for _, e := range events {
		if !apijson.IsVisible(e.Visibility) {
			continue
		}
		n := capitalize(e.Name)
		handler := "function(" + eventName(f.class.Name, e.Name) + "):void"
		doc := func(text string) apijson.Doc {
			return apijson.Doc{Description: text, Since: e.Since, Deprecated: e.Deprecated}
		}

		f.add(&apijson.Method{
			Name: "attach" + n,
			Parameters: []*apijson.Parameter{
				param("oData", "object", true, "An application-specific payload object that will be passed to the event handler along with the event object when firing the event"),
				param("fnFunction", handler, false, "The function to be called when the event occurs"),
				param("oListener", "object", true, "Context object to call the event handler with"),
			},
			ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
			Doc:         doc("Attaches event handler fnFunction to the " + quote(e.Name) + " event of this " + quote(f.class.Name) + "."),
		})
		f.add(&apijson.Method{
			Name: "detach" + n,
			Parameters: []*apijson.Parameter{
				param("fnFunction", handler, false, "The function to be called, when the event occurs"),
				param("oListener", "object", true, "Context object on which the given function had to be called"),
			},
			ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
			Doc:         doc("Detaches event handler fnFunction from the " + quote(e.Name) + " event of this " + quote(f.class.Name) + "."),
		})
		f.add(&apijson.Method{
			Name:       "fire" + n,
			Visibility: ast.VisibilityProtected,
			Parameters: []*apijson.Parameter{
				param("mParameters", eventParametersName(f.class.Name, e.Name), true, "Parameters to pass along with the event"),
			},
			ReturnValue: returns(thisReturn, "Reference to this in order to allow method chaining"),
			Doc:         doc("Fires event " + quote(e.Name) + " to attached listeners."),
		})
	}
}

func quote(s string) string {
	return "\"" + s + "\""
}
