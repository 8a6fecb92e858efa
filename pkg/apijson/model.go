// Package apijson models the api.json documents emitted by the UI5 JSDoc
// tooling, the .dtsgenrc directive files that steer declaration generation,
// and the type universe built from a library and its dependencies.
package apijson

import (
	"github.com/go-json-experiment/json/jsontext"

	"github.com/gnana997/ui5dts/pkg/ast"
)

// Kind is the kind of an api.json symbol.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindNamespace Kind = "namespace"
	KindObject    Kind = "object"
	KindTypedef   Kind = "typedef"
	KindFunction  Kind = "function"
)

// Document is one api.json file.
type Document struct {
	SchemaRef string    `json:"$schema-ref,omitempty"`
	Library   string    `json:"library"`
	Version   string    `json:"version,omitempty"`
	Symbols   []*Symbol `json:"symbols"`
}

// Note is a deprecated/experimental marker.
type Note struct {
	Since string `json:"since,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Doc is the documentation shared by all documented entities.
type Doc struct {
	Description  string   `json:"description,omitempty"`
	Since        string   `json:"since,omitempty"`
	Deprecated   *Note    `json:"deprecated,omitzero"`
	Experimental *Note    `json:"experimental,omitzero"`
	References   []string `json:"references,omitempty"`
}

// Symbol is a top-level api.json entity. It is a single struct for all kinds;
// only the fields relevant for Kind are populated.
type Symbol struct {
	Kind       Kind           `json:"kind"`
	Name       string         `json:"name"`
	Basename   string         `json:"basename,omitempty"`
	Resource   string         `json:"resource,omitempty"`
	Module     string         `json:"module,omitempty"`
	Export     *string        `json:"export,omitzero"`
	Static     bool           `json:"static,omitzero"`
	Visibility ast.Visibility `json:"visibility,omitempty"`
	Abstract   bool           `json:"abstract,omitzero"`
	Final      bool           `json:"final,omitzero"`
	Doc `json:",inline"`

	Extends        NameList         `json:"extends,omitempty"`
	Implements     NameList         `json:"implements,omitempty"`
	TypeParameters []*TypeParameter `json:"typeParameters,omitempty"`
	UI5Metadata    *UI5Metadata     `json:"ui5-metadata,omitzero"`
	Constructor    *Method          `json:"constructor,omitzero"`
	Properties     []*Property      `json:"properties,omitempty"`
	Methods        []*Method        `json:"methods,omitempty"`
	Events         []*Event         `json:"events,omitempty"`

	// Typedefs are either an alias (Type), a record (Properties) or a
	// callback signature (Parameters and ReturnValue).
	Type        *TypeExpr    `json:"type,omitzero"`
	Parameters  []*Parameter `json:"parameters,omitempty"`
	ReturnValue *ReturnValue `json:"returnValue,omitzero"`
	Throws      []*Throws    `json:"throws,omitempty"`

	TSSkip             bool   `json:"tsSkip,omitzero"`
	Synthetic          bool   `json:"synthetic,omitzero"`
	ForwardDeclaration bool   `json:"forwardDeclaration,omitzero"`
	DeprecatedAliasFor string `json:"deprecatedAliasFor,omitempty"`

	// Unknown keeps members this model does not know about, so that overlays
	// and round trips do not lose data.
	Unknown jsontext.Value `json:",inline"`
}

// TypeParameter is a generic parameter of a class or method.
type TypeParameter struct {
	Name        string    `json:"name"`
	Type        *TypeExpr `json:"type,omitzero"`
	Default     *TypeExpr `json:"default,omitzero"`
	Description string    `json:"description,omitempty"`
}

// Property is a field of a class, namespace, object or typedef, or a value of
// an enum.
type Property struct {
	Name       string         `json:"name"`
	Visibility ast.Visibility `json:"visibility,omitempty"`
	Static     bool           `json:"static,omitzero"`
	Readonly   bool           `json:"readonly,omitzero"`
	Optional   bool           `json:"optional,omitzero"`
	Type       *TypeExpr      `json:"type,omitzero"`
	Value      any            `json:"value,omitzero"`
	Module     string         `json:"module,omitempty"`
	Export     *string        `json:"export,omitzero"`
	TSSkip     bool           `json:"tsSkip,omitzero"`
	Doc `json:",inline"`
}

// Method is a method, function or constructor.
type Method struct {
	Name           string           `json:"name,omitempty"`
	Visibility     ast.Visibility   `json:"visibility,omitempty"`
	Static         bool             `json:"static,omitzero"`
	Abstract       bool             `json:"abstract,omitzero"`
	Optional       bool             `json:"optional,omitzero"`
	Module         string           `json:"module,omitempty"`
	Export         *string          `json:"export,omitzero"`
	Resource       string           `json:"resource,omitempty"`
	TypeParameters []*TypeParameter `json:"typeParameters,omitempty"`
	Parameters     []*Parameter     `json:"parameters,omitempty"`
	ReturnValue    *ReturnValue     `json:"returnValue,omitzero"`
	Throws         []*Throws        `json:"throws,omitempty"`
	TSSkip         bool             `json:"tsSkip,omitzero"`
	// Generated marks accessors synthesized from ui5-metadata.
	Generated bool `json:"generated,omitzero"`
	Doc `json:",inline"`
}

// Parameter is a method parameter or an event parameter.
type Parameter struct {
	Name                string              `json:"name"`
	Type                *TypeExpr           `json:"type,omitzero"`
	Optional            bool                `json:"optional,omitzero"`
	Omissible           bool                `json:"omissible,omitzero"`
	DefaultValue        any                 `json:"defaultValue,omitzero"`
	ParameterProperties ParameterProperties `json:"parameterProperties,omitempty"`
	Doc `json:",inline"`
}

// ReturnValue describes what a method returns.
type ReturnValue struct {
	Type        *TypeExpr `json:"type,omitzero"`
	Description string    `json:"description,omitempty"`
}

// Throws documents an exception.
type Throws struct {
	Type        *TypeExpr `json:"type,omitzero"`
	Description string    `json:"description,omitempty"`
}

// Event is a class event as documented at the top level of a class symbol.
type Event struct {
	Name       string         `json:"name"`
	Visibility ast.Visibility `json:"visibility,omitempty"`
	Static     bool           `json:"static,omitzero"`
	Parameters []*Parameter   `json:"parameters,omitempty"`
	Doc `json:",inline"`
}

// UI5Metadata is the managed-object metadata of a class or the stereotype
// information of a namespace.
type UI5Metadata struct {
	Stereotype         string                `json:"stereotype,omitempty"`
	Basetype           string                `json:"basetype,omitempty"`
	Pattern            string                `json:"pattern,omitempty"`
	DefaultAggregation string                `json:"defaultAggregation,omitempty"`
	Properties         []*MetaProperty       `json:"properties,omitempty"`
	Aggregations       []*MetaAggregation    `json:"aggregations,omitempty"`
	Associations       []*MetaAssociation    `json:"associations,omitempty"`
	Events             []*MetaEvent          `json:"events,omitempty"`
	SpecialSettings    []*MetaSpecialSetting `json:"specialSettings,omitempty"`
	Unknown            jsontext.Value        `json:",inline"`
}

// MetaProperty is a managed-object property.
type MetaProperty struct {
	Name         string         `json:"name"`
	Type         *TypeExpr      `json:"type,omitzero"`
	DefaultValue any            `json:"defaultValue,omitzero"`
	Group        string         `json:"group,omitempty"`
	Visibility   ast.Visibility `json:"visibility,omitempty"`
	Bindable     bool           `json:"bindable,omitzero"`
	Methods      []string       `json:"methods,omitempty"`
	Doc `json:",inline"`
}

// MetaAggregation is a managed-object aggregation.
type MetaAggregation struct {
	Name        string         `json:"name"`
	Singular    string         `json:"singularName,omitempty"`
	Type        *TypeExpr      `json:"type,omitzero"`
	AltTypes    []*TypeExpr    `json:"altTypes,omitempty"`
	Cardinality string         `json:"cardinality,omitempty"`
	Visibility  ast.Visibility `json:"visibility,omitempty"`
	Bindable    bool           `json:"bindable,omitzero"`
	Methods     []string       `json:"methods,omitempty"`
	Doc `json:",inline"`
}

// MetaAssociation is a managed-object association.
type MetaAssociation struct {
	Name        string         `json:"name"`
	Singular    string         `json:"singularName,omitempty"`
	Type        *TypeExpr      `json:"type,omitzero"`
	Cardinality string         `json:"cardinality,omitempty"`
	Visibility  ast.Visibility `json:"visibility,omitempty"`
	Methods     []string       `json:"methods,omitempty"`
	Doc `json:",inline"`
}

// MetaEvent is a managed-object event.
type MetaEvent struct {
	Name                string              `json:"name"`
	Visibility          ast.Visibility      `json:"visibility,omitempty"`
	AllowPreventDefault bool                `json:"allowPreventDefault,omitzero"`
	EnableEventBubbling bool                `json:"enableEventBubbling,omitzero"`
	Parameters          ParameterProperties `json:"parameters,omitempty"`
	Methods             []string            `json:"methods,omitempty"`
	Doc `json:",inline"`
}

// MetaSpecialSetting is a constructor setting that is neither a property,
// aggregation, association nor event (for example "id" or "models").
type MetaSpecialSetting struct {
	Name       string         `json:"name"`
	Type       *TypeExpr      `json:"type,omitzero"`
	Visibility ast.Visibility `json:"visibility,omitempty"`
	Doc `json:",inline"`
}

// Multiple reports whether an aggregation or association has 0..n cardinality.
func Multiple(cardinality string) bool {
	return cardinality == "0..n"
}

// ExportName returns the export name and whether one was declared.
func (s *Symbol) ExportName() (string, bool) {
	if s.Export == nil {
		return "", false
	}
	return *s.Export, true
}

// IsVisible reports whether the symbol is public or protected.
func IsVisible(v ast.Visibility) bool {
	return v == "" || v == ast.VisibilityPublic || v == ast.VisibilityProtected
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
