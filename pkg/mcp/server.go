// Package mcp serves declaration generation and symbol lookup over the Model
// Context Protocol.
package mcp

import (
	"context"
	"log/slog"
	"slices"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/ui5dts/pkg/generator"
	"github.com/gnana997/ui5dts/pkg/mcplog"
	"github.com/gnana997/ui5dts/pkg/workspace"
)

const serverVersion = "0.1.0-dev"

// Server exposes a workspace of api.json files and a generator as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	workspace *workspace.Workspace
	generator *generator.Generator
	callLog   *mcplog.Logger // nil disables the call log
	logger    *slog.Logger
}

// NewServer creates a server. callLog may be nil.
func NewServer(ws *workspace.Workspace, gen *generator.Generator, callLog *mcplog.Logger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{workspace: ws, generator: gen, callLog: callLog, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("ui5dts", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listLibrariesTool(), Handler: s.handleListLibraries},
		server.ServerTool{Tool: generateDeclarationsTool(), Handler: s.handleGenerateDeclarations},
		server.ServerTool{Tool: lookupSymbolTool(), Handler: s.handleLookupSymbol},
		server.ServerTool{Tool: searchSymbolsTool(), Handler: s.handleSearchSymbols},
	)
	return s
}

// ServeStdio serves on stdin and stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ensureGenerated generates library unless the symbol table has it already.
func (s *Server) ensureGenerated(ctx context.Context, library string) error {
	if slices.Contains(s.generator.Symbols().Libraries(), library) {
		return nil
	}
	_, err := s.generate(ctx, library, false)
	return err
}

func (s *Server) generate(ctx context.Context, library string, globals bool) (*generator.Result, error) {
	req, err := s.workspace.Request(library, globals)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, req)
}
