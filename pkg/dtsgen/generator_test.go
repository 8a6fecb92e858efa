package dtsgen

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/ui5dts/pkg/ast"
	"github.com/gnana997/ui5dts/pkg/astbuild"
	"github.com/gnana997/ui5dts/pkg/genctx"
)

func testContext(buf *bytes.Buffer) *genctx.Context {
	ctx := genctx.New(context.Background(), "sap.m", "1.120.0")
	ctx.Logger = slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctx
}

func enumRef(name string) *ast.TypeReference {
	return &ast.TypeReference{TypeName: name, IsStandardEnum: true}
}

func sapRoot() []*ast.Namespace {
	return []*ast.Namespace{{Name: "sap", FQN: "sap"}}
}

func TestTypeString(t *testing.T) {
	callback := &ast.FunctionType{
		Parameters: []*ast.Parameter{{Name: "p1", Type: ast.Ref("int")}},
		ReturnType: ast.Ref("void"),
	}
	tests := []struct {
		name  string
		typ   ast.Type
		usage ast.Usage
		want  string
	}{
		{"enum parameter", enumRef("ButtonType"), ast.UsageParameter, "(ButtonType | keyof typeof ButtonType)"},
		{"enum property", enumRef("ButtonType"), ast.UsageProperty, "(ButtonType | keyof typeof ButtonType)"},
		{"enum return", enumRef("ButtonType"), ast.UsageReturnValue, "ButtonType"},
		{"enum const", enumRef("ButtonType"), ast.UsageConst, "ButtonType"},
		{"enum array return", &ast.ArrayType{ElementType: enumRef("ButtonType")}, ast.UsageReturnValue, "ButtonType[]"},
		{"enum array parameter", &ast.ArrayType{ElementType: enumRef("ButtonType")}, ast.UsageParameter,
			"Array<(ButtonType | keyof typeof ButtonType)>"},
		{"simple array", &ast.ArrayType{ElementType: ast.Ref("string")}, ast.UsageParameter, "string[]"},
		{"generic array", &ast.ArrayType{ElementType: ast.Ref("Promise", ast.Ref("string"))}, ast.UsageReturnValue,
			"Array<Promise<string>>"},
		{"import array", &ast.ArrayType{ElementType: ast.Ref(`import("sap/m/Button").default`)}, ast.UsageProperty,
			`Array<import("sap/m/Button").default>`},
		{"module reference", ast.Ref("module:sap/base/Log"), ast.UsageParameter, `(typeof import("sap/base/Log"))`},
		{"type arguments", ast.Ref("Map", ast.Ref("string"), enumRef("ButtonType")), ast.UsageParameter,
			"Map<string, (ButtonType | keyof typeof ButtonType)>"},
		{"union with function", ast.Union(ast.Ref("string"), callback), ast.UsageParameter, "string | ((p1: int) => void)"},
		{"intersection", &ast.IntersectionType{Types: []ast.Type{ast.Ref("A"), &ast.UnionType{Types: []ast.Type{ast.Ref("B"), ast.Ref("C")}}}},
			ast.UsageProperty, "A & (B | C)"},
		{"callback parameters widen", &ast.FunctionType{
			Parameters: []*ast.Parameter{{Name: "p1", Type: enumRef("ButtonType")}},
			ReturnType: enumRef("ButtonType"),
		}, ast.UsageReturnValue, "(p1: (ButtonType | keyof typeof ButtonType)) => ButtonType"},
		{"constructor type", &ast.FunctionType{IsConstructor: true, ReturnType: ast.Ref("Object")}, ast.UsageParameter, "new () => Object"},
		{"type literal", &ast.TypeLiteral{Members: []*ast.Variable{
			{Name: "a", Type: ast.Ref("string")},
			{Name: "b-c", Type: ast.Ref("int"), Optional: true},
		}}, ast.UsageParameter, `{ a: string; "b-c"?: int; }`},
		{"empty literal", &ast.TypeLiteral{}, ast.UsageParameter, "{}"},
		{"literal", &ast.LiteralType{Literal: `"auto"`}, ast.UsageParameter, `"auto"`},
		{"native", ast.Native("/* was: sap.Gone */ any"), ast.UsageParameter, "/* was: sap.Gone */ any"},
		{"nil", nil, ast.UsageParameter, "any"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, typeString(tt.typ, tt.usage))
		})
	}
}

func TestParameterString(t *testing.T) {
	assert.Equal(t, "...args: any[]", parameterString(&ast.Parameter{Name: "args", Rest: true, Type: &ast.ArrayType{ElementType: ast.Ref("any")}}))
	assert.Equal(t, "default_?: string", parameterString(&ast.Parameter{Name: "default", Optional: true, Type: ast.Ref("string")}))
}

func TestMarkerName(t *testing.T) {
	assert.Equal(t, "__implements__sap_ui_core_IFormContent", markerName("sap.ui.core.IFormContent"))
	assert.Equal(t, "__implements__module_sap_m_IBar", markerName("module:sap/m/IBar"))
}

func buttonModule() *ast.Module {
	button := &ast.Class{
		Name:             "Button",
		FQN:              "sap.m.Button",
		Doc:              &ast.Doc{Description: "A <b>button</b>."},
		Extends:          ast.Ref("Control"),
		Implements:       []ast.Type{ast.Ref("IFormContent")},
		ImplementsFQName: []string{"sap.ui.core.IFormContent"},
		Constructors: []*ast.FunctionDesc{{
			Name:          "constructor",
			IsConstructor: true,
			Parameters:    []*ast.Parameter{{Name: "sId", Type: ast.Ref("string"), Optional: true}},
		}},
		Props: []*ast.Variable{{Name: "Mode", Type: ast.Native("typeof Mode"), Static: true}},
		Methods: []*ast.FunctionDesc{
			{Name: "getType", FQN: "sap.m.Button.getType", ReturnType: enumRef("ButtonType")},
			{Name: "setType", FQN: "sap.m.Button.setType", ReturnType: ast.Ref("this"),
				Parameters: []*ast.Parameter{{Name: "sType", Type: enumRef("ButtonType")}}},
			{Name: "fireTap", FQN: "sap.m.Button.fireTap", ReturnType: ast.Ref("this"), Visibility: ast.VisibilityProtected},
		},
	}
	mode := &ast.Enum{Name: "Mode", FQN: "sap.m.ButtonMode", Values: []*ast.Variable{{Name: "Default", Value: "Default"}}}
	return &ast.Module{
		Name: "sap/m/Button",
		Imports: []*ast.Import{
			{Module: "sap/ui/core/Control", DefaultName: "Control"},
			{Module: "sap/ui/core/library", Named: []ast.ImportMapping{{Imported: "IFormContent", Local: "IFormContent"}}},
			{Module: "sap/m/library", Named: []ast.ImportMapping{{Imported: "ButtonType", Local: "ButtonType"}}},
		},
		Exports: []*ast.Export{
			{Name: "Button", AsDefault: true, Expression: button},
			{Name: "Mode", Expression: mode},
		},
	}
}

func TestGenerate_Module(t *testing.T) {
	var buf bytes.Buffer
	out := Generate(testContext(&buf), &astbuild.Result{Modules: []*ast.Module{buttonModule()}, Globals: sapRoot()})

	want := `// For Library Version: 1.120.0

declare module "sap/m/Button" {
  import Control from "sap/ui/core/Control";
  import { IFormContent } from "sap/ui/core/library";
  import { ButtonType } from "sap/m/library";

  /**
   * A **button**.
   */
  export default class Button extends Control implements IFormContent {
    __implements__sap_ui_core_IFormContent: boolean;
    constructor(sId?: string);
    static Mode: typeof Mode;
    getType(): ButtonType;
    setType(sType: (ButtonType | keyof typeof ButtonType)): this;
    protected fireTap(): this;
  }

  export enum Mode {
    Default = "Default",
  }
}

declare namespace sap {
}
`
	assert.Equal(t, want, out)
	assert.NotContains(t, buf.String(), "formatting failed")
}

func TestGenerate_StaticObject(t *testing.T) {
	iface := &ast.Interface{
		Name:         "BusyIndicator",
		FQN:          "sap.ui.core.BusyIndicator",
		StaticObject: true,
		Methods: []*ast.FunctionDesc{{
			Name:       "show",
			ReturnType: ast.Ref("void"),
			Parameters: []*ast.Parameter{{Name: "iDelay", Type: ast.Ref("int"), Optional: true}},
		}},
	}
	value := &ast.Variable{Name: "BusyIndicator", FQN: "sap.ui.core.BusyIndicator", Const: true, Type: ast.Ref("BusyIndicator")}
	module := &ast.Module{Name: "sap/ui/core/BusyIndicator", Exports: []*ast.Export{
		{Name: "BusyIndicator", Expression: iface},
		{Name: "BusyIndicator", AsDefault: true, Expression: value},
	}}

	var buf bytes.Buffer
	out := Generate(testContext(&buf), &astbuild.Result{Modules: []*ast.Module{module}, Globals: sapRoot()})

	assert.Contains(t, out, "  interface BusyIndicator {\n    show(iDelay?: int): void;\n  }\n")
	assert.Contains(t, out, "  const BusyIndicator: BusyIndicator;\n  export default BusyIndicator;\n")
	assert.NotContains(t, out, "export interface BusyIndicator")
}

func TestGenerate_DefaultExportForms(t *testing.T) {
	load := func(params ...*ast.Parameter) *ast.FunctionDesc {
		return &ast.FunctionDesc{Name: "load", ReturnType: ast.Ref("void"), Parameters: params}
	}
	module := &ast.Module{Name: "sap/base/load", Exports: []*ast.Export{
		{Name: "load", AsDefault: true, Expression: load(&ast.Parameter{Name: "name", Type: ast.Ref("string")})},
		{Name: "load", AsDefault: true, Expression: load()},
	}}
	enumModule := &ast.Module{Name: "sap/m/Size", Exports: []*ast.Export{
		{Name: "Size", AsDefault: true, Expression: &ast.Enum{Name: "Size", Values: []*ast.Variable{{Name: "Small", Value: "Small"}, {Name: "Two", Value: float64(2)}}}},
	}}

	var buf bytes.Buffer
	out := Generate(testContext(&buf), &astbuild.Result{Modules: []*ast.Module{module, enumModule}, Globals: sapRoot()})

	assert.Contains(t, out, "  function load(name: string): void;\n")
	assert.Contains(t, out, "  function load(): void;\n")
	assert.Equal(t, 1, strings.Count(out, "export default load;"))
	assert.Contains(t, out, "  enum Size {\n    Small = \"Small\",\n    Two = 2,\n  }\n  export default Size;\n")
}

func TestGenerate_DeprecatedEnumAlias(t *testing.T) {
	alias := &ast.Enum{
		Name:     "Old",
		FQN:      "sap.m.Old",
		AliasFor: ast.Ref("New"),
		Doc:      &ast.Doc{Deprecated: &ast.Note{Since: "1.2", Text: "use New"}},
	}
	module := &ast.Module{Name: "sap/m/library", Exports: []*ast.Export{{Name: "Old", Expression: alias}}}

	var buf bytes.Buffer
	out := Generate(testContext(&buf), &astbuild.Result{Modules: []*ast.Module{module}, Globals: sapRoot()})

	assert.Contains(t, out, "  export const Old: typeof New;\n")
	assert.Contains(t, out, "  export type Old = New;\n")
	assert.Equal(t, 2, strings.Count(out, "@deprecated (since 1.2) - use New"))
}

func TestGenerate_Globals(t *testing.T) {
	root := &ast.Namespace{Name: "sap", FQN: "sap", Namespaces: []*ast.Namespace{
		{Name: "empty", FQN: "sap.empty"},
		{Name: "util", FQN: "sap.util", Interfaces: []*ast.Interface{{
			Name:    "IThing",
			FQN:     "sap.util.IThing",
			Nominal: true,
			Props:   []*ast.Variable{{Name: "size", Type: enumRef("Size"), Optional: true}},
		}}},
	}}
	jq := &ast.Namespace{Name: "jQuery", FQN: "jQuery", Functions: []*ast.FunctionDesc{{Name: "sap", ReturnType: ast.Ref("void")}}}

	var buf bytes.Buffer
	out := Generate(testContext(&buf), &astbuild.Result{Globals: []*ast.Namespace{jq, root}})

	assert.Contains(t, out, "declare namespace jQuery {\n  export function sap(): void;\n}\n")
	assert.Contains(t, out, `export namespace util {
    export interface IThing {
      __implements__sap_util_IThing: boolean;
      size?: (Size | keyof typeof Size);
    }
  }`)
	assert.NotContains(t, out, "namespace empty")
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Greater(t, strings.Index(out, "declare namespace sap"), strings.Index(out, "declare namespace jQuery"))
}

func TestGenerate_IgnoreDirective(t *testing.T) {
	var buf bytes.Buffer
	ctx := testContext(&buf)
	ctx.Directives.FQNToIgnore = map[string]string{"sap.m.Button": "known issue", "sap.m.Button.getType": ""}

	out := Generate(ctx, &astbuild.Result{Modules: []*ast.Module{buttonModule()}, Globals: sapRoot()})

	assert.Contains(t, out, "   */\n  // @ts-ignore - known issue\n  export default class Button")
	assert.Contains(t, out, "    // @ts-ignore\n    getType(): ButtonType;\n")
}

func TestGenerate_FormatFailureFallsBack(t *testing.T) {
	broken := &ast.TypeAliasDeclaration{Name: "Broken", Type: ast.Native("{ a: string")}
	module := &ast.Module{Name: "sap/m/Broken", Exports: []*ast.Export{{Name: "Broken", Expression: broken}}}

	var buf bytes.Buffer
	out := Generate(testContext(&buf), &astbuild.Result{Modules: []*ast.Module{module}, Globals: sapRoot()})

	assert.Contains(t, out, "\nexport type Broken = { a: string;\n")
	assert.Contains(t, buf.String(), "formatting failed")
}

func TestRenderDeclaration(t *testing.T) {
	var buf bytes.Buffer
	fn := &ast.FunctionDesc{
		Name:       "byId",
		FQN:        "sap.ui.getCore.byId",
		Doc:        &ast.Doc{Description: "Returns the element.", Returns: "the element"},
		Parameters: []*ast.Parameter{{Name: "sId", Type: ast.Ref("string"), Description: "ID"}},
		ReturnType: ast.Union(ast.Ref("Element"), ast.Ref("undefined")),
	}

	out := RenderDeclaration(testContext(&buf), fn)
	require.Equal(t, `/**
 * Returns the element.
 *
 * @param sId ID
 * @returns the element
 */
function byId(sId: string): Element | undefined;
`, out)
}
