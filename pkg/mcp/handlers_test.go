package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/ui5dts/pkg/generator"
	"github.com/gnana997/ui5dts/pkg/mcplog"
	"github.com/gnana997/ui5dts/pkg/util"
	"github.com/gnana997/ui5dts/pkg/workspace"
)

const coreJSON = `{
  "library": "sap.ui.core",
  "version": "1.120.0",
  "symbols": [
    {"kind": "class", "name": "sap.ui.base.Object", "module": "sap/ui/base/Object", "export": "", "visibility": "public"},
    {"kind": "class", "name": "sap.ui.base.ManagedObject", "module": "sap/ui/base/ManagedObject", "export": "", "visibility": "public",
     "extends": "sap.ui.base.Object"},
    {"kind": "class", "name": "sap.ui.core.Element", "module": "sap/ui/core/Element", "export": "", "visibility": "public",
     "extends": "sap.ui.base.ManagedObject"},
    {"kind": "class", "name": "sap.ui.core.Control", "module": "sap/ui/core/Control", "export": "", "visibility": "public",
     "extends": "sap.ui.core.Element"}
  ]
}`

const mJSON = `{
  "library": "sap.m",
  "version": "1.120.0",
  "symbols": [
    {"kind": "namespace", "name": "sap.m", "module": "sap/m/library", "export": "", "visibility": "public"},
    {"kind": "class", "name": "sap.m.Button", "module": "sap/m/Button", "export": "", "visibility": "public",
     "extends": "sap.ui.core.Control",
     "description": "Enables users to trigger actions.",
     "ui5-metadata": {"properties": [{"name": "text", "type": "string", "visibility": "public"}]}},
    {"kind": "class", "name": "sap.m.Label", "module": "sap/m/Label", "export": "", "visibility": "public",
     "extends": "sap.ui.core.Control"}
  ]
}`

// --- helpers ---

func testServer(t *testing.T, callLog *mcplog.Logger) *Server {
	t.Helper()
	root := t.TempDir()
	for rel, content := range map[string]string{"core/api.json": coreJSON, "m/api.json": mJSON} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := util.WithLogger(context.Background(), logger)
	ws, err := workspace.Open(ctx, root, nil, workspace.Options{})
	require.NoError(t, err)
	gen, err := generator.New(generator.WithLogger(logger))
	require.NoError(t, err)
	return NewServer(ws, gen, callLog, logger)
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func handlerFor(t *testing.T, s *Server, name string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.Helper()
	switch name {
	case "list_libraries":
		return s.handleListLibraries
	case "generate_declarations":
		return s.handleGenerateDeclarations
	case "lookup_symbol":
		return s.handleLookupSymbol
	case "search_symbols":
		return s.handleSearchSymbols
	}
	t.Fatalf("unknown tool: %s", name)
	return nil
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	result, err := handlerFor(t, s, req.Params.Name)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- list_libraries ---

func TestHandleListLibraries(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("list_libraries", nil))
	assert.False(t, result.IsError)

	var libs []libraryInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &libs))
	require.Len(t, libs, 2)
	assert.Equal(t, libraryInfo{Name: "sap.m", Version: "1.120.0", Symbols: 3}, libs[0])
	assert.Equal(t, "sap.ui.core", libs[1].Name)

	callTool(t, s, makeRequest("generate_declarations", map[string]any{"library": "sap.m"}))
	result = callTool(t, s, makeRequest("list_libraries", nil))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &libs))
	assert.True(t, libs[0].Generated)
	assert.False(t, libs[1].Generated)
}

// --- generate_declarations ---

func TestHandleGenerateDeclarations(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("generate_declarations", map[string]any{"library": "sap.m"}))
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.True(t, strings.HasPrefix(text, "// For Library Version: 1.120.0\n"))
	assert.Contains(t, text, `declare module "sap/m/Button" {`)
	assert.Contains(t, text, "setText(text: string): this;")
}

func TestHandleGenerateDeclarations_Globals(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("generate_declarations", map[string]any{"library": "sap.m", "generate_globals": true}))
	assert.False(t, result.IsError)
	assert.NotContains(t, resultText(t, result), "declare module")
}

func TestHandleGenerateDeclarations_Errors(t *testing.T) {
	s := testServer(t, nil)

	result := callTool(t, s, makeRequest("generate_declarations", nil))
	assert.True(t, result.IsError)

	result = callTool(t, s, makeRequest("generate_declarations", map[string]any{"library": "sap.x"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "unknown library")
}

// --- lookup_symbol ---

func TestHandleLookupSymbol_GeneratesOnDemand(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("lookup_symbol", map[string]any{"name": "sap.m.Button"}))
	require.False(t, result.IsError, resultText(t, result))

	var info symbolInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &info))
	assert.Equal(t, "sap.m.Button", info.Name)
	assert.Equal(t, "Class", info.Kind)
	assert.Equal(t, "sap.m", info.Library)
	assert.Equal(t, "sap/m/Button", info.Module)
	assert.True(t, info.Default)
	assert.Contains(t, info.Declaration, "class Button extends Control {")
	assert.Contains(t, info.Declaration, "Enables users to trigger actions.")
}

func TestHandleLookupSymbol_NotFound(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("lookup_symbol", map[string]any{"name": "sap.m.Buton"}))
	assert.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "symbol not found: sap.m.Buton")
	assert.Contains(t, text, "sap.m.Button")
	assert.Contains(t, text, "sap.m.Label")
}

// --- search_symbols ---

func TestHandleSearchSymbols(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, makeRequest("search_symbols", map[string]any{"prefix": "sap.m.Button", "limit": 1.0}))
	assert.False(t, result.IsError)

	var found []symbolInfo
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "sap.m.Button", found[0].Name)
	assert.Empty(t, found[0].Declaration)
}

// --- call log ---

func TestLoggingMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	callLog, err := mcplog.NewLogger(path)
	require.NoError(t, err)
	s := testServer(t, callLog)

	req := makeRequest("generate_declarations", map[string]any{"library": "sap.x"})
	wrapped := s.loggingMiddleware()(handlerFor(t, s, req.Params.Name))
	_, err = wrapped(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, callLog.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry mcplog.LogEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "generate_declarations", entry.Tool)
	assert.Equal(t, "sap.x", entry.Library)
	assert.True(t, entry.IsError)
	assert.Nil(t, entry.Error)
	assert.Positive(t, entry.ResponseBytes)
}
