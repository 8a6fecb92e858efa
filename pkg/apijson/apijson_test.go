package apijson

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/ui5dts/pkg/ast"
)

const buttonDoc = `{
  "$schema-ref": "http://schemas.sap.com/sapui5/designtime/api.json/1.0",
  "version": "1.120.0",
  "library": "sap.m",
  "symbols": [
    {
      "kind": "class",
      "name": "sap.m.Button",
      "basename": "Button",
      "module": "sap/m/Button",
      "export": "",
      "visibility": "public",
      "extends": "sap.ui.core.Control",
      "implements": ["sap.ui.core.IFormContent"],
      "description": "A <b>button</b>.",
      "ui5-metadata": {
        "stereotype": "control",
        "vendorMetadataFlag": true,
        "properties": [{"name": "text", "type": "string", "defaultValue": "", "visibility": "public"}],
        "events": [{"name": "press", "visibility": "public", "parameters": {
          "zeta": {"name": "zeta", "type": "string"},
          "alpha": {"name": "alpha", "type": "int"}
        }}]
      },
      "methods": [
        {"name": "getText", "visibility": "public", "returnValue": {"type": "string"}},
        {"name": "attachTap", "visibility": "public", "deprecated": {"since": "1.20", "text": "use press"},
         "parameters": [{"name": "oData", "type": "object", "optional": true}]}
      ],
      "customVendorField": {"keep": true}
    },
    {
      "kind": "interface",
      "name": "sap.m.IMulti",
      "extends": ["sap.ui.core.IA", "sap.ui.core.IB"]
    },
    {
      "kind": "enum",
      "name": "sap.m.ButtonType",
      "module": "sap/m/library",
      "export": "ButtonType",
      "properties": [
        {"name": "Default", "value": "Default", "static": true},
        {"name": "Back", "value": "Back", "static": true}
      ]
    }
  ]
}`

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(buttonDoc))
	require.NoError(t, err)

	assert.Equal(t, "sap.m", doc.Library)
	assert.Equal(t, "1.120.0", doc.Version)
	require.Len(t, doc.Symbols, 3)

	button := doc.Symbols[0]
	assert.Equal(t, KindClass, button.Kind)
	name, ok := button.ExportName()
	assert.True(t, ok)
	assert.Equal(t, "", name)
	assert.Equal(t, NameList{"sap.ui.core.Control"}, button.Extends)
	assert.Equal(t, NameList{"sap.ui.core.IFormContent"}, button.Implements)
	assert.Equal(t, "A <b>button</b>.", button.Description)
	assert.Equal(t, ast.VisibilityPublic, button.Visibility)
	require.NotNil(t, button.UI5Metadata)
	assert.Equal(t, "string", button.UI5Metadata.Properties[0].Type.Raw)

	params := button.UI5Metadata.Events[0].Parameters
	require.Len(t, params, 2)
	assert.Equal(t, "zeta", params[0].Name, "member order must be preserved")
	assert.Equal(t, "alpha", params[1].Name)

	attach := button.Methods[1]
	require.NotNil(t, attach.Deprecated)
	assert.Equal(t, "1.20", attach.Deprecated.Since)
	assert.True(t, attach.Parameters[0].Optional)

	multi := doc.Symbols[1]
	assert.Equal(t, NameList{"sap.ui.core.IA", "sap.ui.core.IB"}, multi.Extends)
	_, ok = multi.ExportName()
	assert.False(t, ok)
}

func TestEncodeDocument_KeepsUnknownMembers(t *testing.T) {
	doc, err := DecodeDocument([]byte(buttonDoc))
	require.NoError(t, err)

	out, err := EncodeDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"customVendorField"`)
	assert.Contains(t, string(out), `"vendorMetadataFlag"`)
	assert.NotContains(t, string(out), `"Unknown"`)
	assert.Contains(t, string(doc.Symbols[0].Unknown), `"customVendorField"`)
	assert.NotContains(t, string(out), `["sap.ui.core.Control"]`, "single names stay scalar")

	again, err := DecodeDocument(out)
	require.NoError(t, err)
	assert.Equal(t, "zeta", again.Symbols[0].UI5Metadata.Events[0].Parameters[0].Name)
	assert.Contains(t, string(again.Symbols[0].Unknown), `"keep"`)
	assert.Contains(t, string(again.Symbols[0].UI5Metadata.Unknown), `"vendorMetadataFlag"`)
}

func TestDecodeDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"library":`},
		{"missing library", `{"symbols":[]}`},
		{"symbol without name", `{"library":"sap.m","symbols":[{"kind":"class"}]}`},
		{"bad extends", `{"library":"sap.m","symbols":[{"kind":"class","name":"a.B","extends":42}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.data))
			require.Error(t, err)
		})
	}

	_, err := DecodeDocument([]byte(`{"symbols":[]}`))
	assert.True(t, errors.Is(err, ErrInvalidDocument))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestMergeDirectives(t *testing.T) {
	a := &Directives{
		BadSymbols:   []string{"sap.m.Bad"},
		TypeTyposMap: map[string]string{"sting": "string", "Interger": "int"},
		FQNToIgnore:  map[string]string{"sap.m.X": "first"},
	}
	b := &Directives{
		BadSymbols:            []string{"sap.f.Bad"},
		TypeTyposMap:          map[string]string{"Interger": "number"},
		FQNToIgnore:           map[string]string{"sap.m.X": "second"},
		DeprecatedEnumAliases: map[string]string{"sap.m.Old": "sap.m.New"},
	}

	merged := MergeDirectives(a, nil, b)
	assert.Equal(t, []string{"sap.m.Bad", "sap.f.Bad"}, merged.BadSymbols)
	assert.Equal(t, map[string]string{"sting": "string", "Interger": "number"}, merged.TypeTyposMap)
	assert.Equal(t, "second", merged.FQNToIgnore["sap.m.X"])
	assert.Equal(t, "sap.m.New", merged.DeprecatedEnumAliases["sap.m.Old"])

	// Inputs are untouched.
	assert.Equal(t, "int", a.TypeTyposMap["Interger"])
}

func TestNamespaceConversionFor(t *testing.T) {
	d, err := DecodeDirectives([]byte(`{"namespacesToInterfaces": {
		"sap.ui.core.Popup.Dock": true,
		"sap.ui.Device.os": "keep_original_ns",
		"sap.ui.Off": false
	}}`))
	require.NoError(t, err)

	assert.Equal(t, ConvertToInterface, d.NamespaceConversionFor("sap.ui.core.Popup.Dock"))
	assert.Equal(t, ConvertToObject, d.NamespaceConversionFor("sap.ui.Device.os"))
	assert.Equal(t, ConvertNone, d.NamespaceConversionFor("sap.ui.Off"))
	assert.Equal(t, ConvertNone, d.NamespaceConversionFor("sap.ui.Unknown"))

	var nilDirectives *Directives
	assert.Equal(t, ConvertNone, nilDirectives.NamespaceConversionFor("x"))
}

func TestTypeUniverse(t *testing.T) {
	core := &Document{Library: "sap.ui.core", Symbols: []*Symbol{
		{Kind: KindClass, Name: "sap.ui.base.ManagedObject"},
		{Kind: KindClass, Name: "sap.ui.core.Element", Extends: NameList{"sap.ui.base.ManagedObject"}},
		{Kind: KindClass, Name: "sap.ui.core.Control", Extends: NameList{"sap.ui.core.Element"}},
		{Kind: KindNamespace, Name: "sap.ui", Synthetic: true},
	}}
	m, err := DecodeDocument([]byte(buttonDoc))
	require.NoError(t, err)

	u := NewTypeUniverse(m, core)
	assert.Equal(t, 6, u.Len())
	assert.Equal(t, "sap.ui.core", u.Library("sap.ui.core.Control"))

	_, ok := u.Lookup("sap.ui")
	assert.False(t, ok, "synthetic symbols are not part of the universe")

	assert.True(t, u.IsManagedObject("sap.m.Button"))
	assert.True(t, u.IsA("sap.m.Button", "sap.ui.core.Element"))
	assert.False(t, u.IsManagedObject("sap.m.IMulti"))
	assert.False(t, u.IsManagedObject("does.not.Exist"))

	assert.True(t, u.IsStandardEnum("sap.m.ButtonType"))
	assert.False(t, u.IsStandardEnum("sap.m.Button"))
}

func TestIsStandardEnum(t *testing.T) {
	numeric := &Symbol{Kind: KindEnum, Properties: []*Property{{Name: "One", Value: float64(1)}}}
	assert.False(t, IsStandardEnum(numeric))

	implicit := &Symbol{Kind: KindEnum, Properties: []*Property{{Name: "Auto"}}}
	assert.True(t, IsStandardEnum(implicit))

	alias := &Symbol{Kind: KindEnum, DeprecatedAliasFor: "sap.m.New", Properties: []*Property{{Name: "A", Value: "A"}}}
	assert.False(t, IsStandardEnum(alias))
}

func TestDocumentClone_IsDeep(t *testing.T) {
	doc, err := DecodeDocument([]byte(buttonDoc))
	require.NoError(t, err)
	doc.Symbols[0].Methods[0].ReturnValue.Type.Parsed = ast.Ref("string")

	cp := doc.Clone()
	cp.Symbols[0].Name = "sap.m.Other"
	cp.Symbols[0].Methods[0].ReturnValue.Type.Parsed.(*ast.TypeReference).TypeName = "number"
	cp.Symbols[0].UI5Metadata.Events[0].Parameters[0].Name = "changed"
	*cp.Symbols[0].Export = "Changed"
	cp.Symbols[0].Methods[1].Deprecated.Text = "changed"

	orig := doc.Symbols[0]
	assert.Equal(t, "sap.m.Button", orig.Name)
	assert.Equal(t, "string", orig.Methods[0].ReturnValue.Type.Parsed.(*ast.TypeReference).TypeName)
	assert.Equal(t, "zeta", orig.UI5Metadata.Events[0].Parameters[0].Name)
	assert.Equal(t, "", *orig.Export)
	assert.Equal(t, "use press", orig.Methods[1].Deprecated.Text)
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	apiPath := filepath.Join(dir, "api.json")
	require.NoError(t, os.WriteFile(apiPath, []byte(buttonDoc), 0o644))

	rc1 := filepath.Join(dir, "base.dtsgenrc")
	rc2 := filepath.Join(dir, "m.dtsgenrc")
	require.NoError(t, os.WriteFile(rc1, []byte(`{"badSymbols":["a"],"fqnToIgnore":{"x":"why"}}`), 0o644))
	require.NoError(t, os.WriteFile(rc2, []byte(`{"badSymbols":["b"]}`), 0o644))

	loader := NewLoader(nil, nil)
	defer loader.Close()

	doc, err := loader.LoadDocument(apiPath)
	require.NoError(t, err)
	assert.Equal(t, "sap.m", doc.Library)

	d, err := loader.LoadDirectives(rc1, rc2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d.BadSymbols)
	assert.Equal(t, "why", d.FQNToIgnore["x"])

	_, err = loader.LoadDocument(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	require.NoError(t, loader.Invalidate(apiPath))
}
