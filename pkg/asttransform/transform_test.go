package asttransform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/ui5dts/pkg/ast"
	"github.com/gnana997/ui5dts/pkg/astbuild"
	"github.com/gnana997/ui5dts/pkg/genctx"
)

func testResult() (*astbuild.Result, *ast.Class) {
	class := &ast.Class{
		Name:    "List",
		FQN:     "sap.m.List",
		Doc:     &ast.Doc{Visibility: ast.VisibilityPublic},
		Extends: ast.Ref("Array", ast.Ref("string")),
		Props: []*ast.Variable{
			{Name: "items", Type: ast.Ref("Array", ast.Ref("ListItem")), Visibility: ast.VisibilityPublic},
			{Name: "_cache", Type: ast.Ref("Array"), Visibility: ast.VisibilityPrivate},
		},
		Methods: []*ast.FunctionDesc{
			{Name: "getItems", ReturnType: ast.Union(ast.Ref("Array", ast.Ref("ListItem")), ast.Ref("null")), Visibility: ast.VisibilityPublic},
			{Name: "render", Visibility: ast.VisibilityRestricted},
			{Name: "init", Visibility: ast.VisibilityProtected},
		},
	}
	hidden := &ast.Class{Name: "Hidden", Doc: &ast.Doc{Visibility: ast.VisibilityRestricted}}
	module := &ast.Module{
		Name: "sap/m/List",
		Exports: []*ast.Export{
			{Name: "List", AsDefault: true, Expression: class},
			{Name: "Hidden", Expression: hidden},
		},
	}
	globals := &ast.Namespace{
		Name: "sap",
		FQN:  "sap",
		Namespaces: []*ast.Namespace{{
			Name:      "m",
			FQN:       "sap.m",
			Functions: []*ast.FunctionDesc{{Name: "secret", Visibility: ast.VisibilityPrivate}, {Name: "open"}},
			Classes:   []*ast.Class{{Name: "Gone", Doc: &ast.Doc{Visibility: ast.VisibilityPrivate}}},
		}},
	}
	return &astbuild.Result{Modules: []*ast.Module{module}, Globals: []*ast.Namespace{globals}}, class
}

func TestTransform_FiltersHiddenDeclarations(t *testing.T) {
	res, class := testResult()
	Transform(genctx.New(context.Background(), "sap.m", "1.0.0"), res)

	require.Len(t, res.Modules[0].Exports, 1)
	require.Len(t, class.Props, 1)
	assert.Equal(t, "items", class.Props[0].Name)

	var methods []string
	for _, m := range class.Methods {
		methods = append(methods, m.Name)
	}
	assert.Equal(t, []string{"getItems", "init"}, methods)

	m := res.Globals[0].Namespaces[0]
	require.Len(t, m.Functions, 1)
	assert.Equal(t, "open", m.Functions[0].Name)
	assert.Empty(t, m.Classes)
}

func TestTransform_CanonicalArrays(t *testing.T) {
	res, class := testResult()
	Transform(genctx.New(context.Background(), "sap.m", "1.0.0"), res)

	assert.Equal(t, &ast.ArrayType{ElementType: ast.Ref("ListItem")}, class.Props[0].Type)
	union, ok := class.Methods[0].ReturnType.(*ast.UnionType)
	require.True(t, ok)
	assert.Equal(t, &ast.ArrayType{ElementType: ast.Ref("ListItem")}, union.Types[0])

	assert.Equal(t, ast.Ref("Array", ast.Ref("string")), class.Extends, "heritage clauses keep references")
}

func TestTransform_IndexesParents(t *testing.T) {
	res, class := testResult()
	parents := Transform(genctx.New(context.Background(), "sap.m", "1.0.0"), res)

	method := class.Methods[0]
	assert.Same(t, class, parents.Parent(method))
	assert.Same(t, res.Modules[0], parents.EnclosingModule(method))
	assert.Nil(t, parents.EnclosingModule(res.Globals[0].Namespaces[0]))
}
