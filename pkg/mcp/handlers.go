package mcp

import (
	"context"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/ui5dts/pkg/symtab"
)

const defaultSearchLimit = 20

// libraryInfo is an entry of the list_libraries result.
type libraryInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	Symbols   int    `json:"symbols"`
	Generated bool   `json:"generated"`
}

// symbolInfo is the lookup_symbol result and an entry of search_symbols.
type symbolInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Library     string `json:"library"`
	Module      string `json:"module,omitempty"`
	Export      string `json:"export,omitempty"`
	Default     bool   `json:"default,omitzero"`
	Declaration string `json:"declaration,omitempty"`
}

func newSymbolInfo(e *symtab.Entry) symbolInfo {
	return symbolInfo{
		Name:    e.FQN,
		Kind:    string(e.Kind()),
		Library: e.Library,
		Module:  e.Module,
		Export:  e.Export,
		Default: e.Default,
	}
}

// jsonResult encodes v deterministically as a text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("encoding result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleListLibraries(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	generated := s.generator.Symbols().Libraries()
	libs := s.workspace.Libraries()
	out := make([]libraryInfo, 0, len(libs))
	for _, lib := range libs {
		out = append(out, libraryInfo{
			Name:      lib.Name,
			Version:   lib.Version,
			Symbols:   lib.Symbols,
			Generated: slices.Contains(generated, lib.Name),
		})
	}
	return jsonResult(out)
}

func (s *Server) handleGenerateDeclarations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	library, err := req.RequireString("library")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.generate(ctx, library, req.GetBool("generate_globals", false))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("generating "+library, err), nil
	}
	return mcp.NewToolResultText(res.DTSText), nil
}

func (s *Server) handleLookupSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if library, ok := s.workspace.OwningLibrary(name); ok {
		if err := s.ensureGenerated(ctx, library); err != nil {
			return mcp.NewToolResultErrorFromErr("generating "+library, err), nil
		}
	}

	entry, text, ok := s.generator.Render(ctx, name)
	if !ok {
		return mcp.NewToolResultError(s.notFound(name)), nil
	}
	info := newSymbolInfo(entry)
	info.Declaration = text
	return jsonResult(info)
}

// notFound builds the message for an unknown symbol, suggesting up to ten
// siblings of the name.
func (s *Server) notFound(name string) string {
	msg := "symbol not found: " + name
	parent := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		parent = name[:i+1]
	}
	var names []string
	for _, e := range s.generator.Symbols().Search(parent, 0) {
		if strings.Contains(e.FQN[len(parent):], ".") {
			continue
		}
		names = append(names, e.FQN)
		if len(names) == 10 {
			break
		}
	}
	if len(names) > 0 {
		msg += "; known names under " + strings.TrimSuffix(parent, ".") + ": " + strings.Join(names, ", ")
	}
	return msg
}

func (s *Server) handleSearchSymbols(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix, err := req.RequireString("prefix")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	if library, ok := s.workspace.OwningLibrary(prefix); ok {
		if err := s.ensureGenerated(ctx, library); err != nil {
			return mcp.NewToolResultErrorFromErr("generating "+library, err), nil
		}
	}

	entries := s.generator.Symbols().Search(prefix, limit)
	out := make([]symbolInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, newSymbolInfo(e))
	}
	return jsonResult(out)
}
