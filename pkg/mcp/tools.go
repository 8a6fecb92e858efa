package mcp

import "github.com/mark3labs/mcp-go/mcp"

func listLibrariesTool() mcp.Tool {
	return mcp.NewTool("list_libraries",
		mcp.WithDescription("Lists the UI5 libraries of the workspace with version, symbol count and whether declarations were generated in this session."),
	)
}

func generateDeclarationsTool() mcp.Tool {
	return mcp.NewTool("generate_declarations",
		mcp.WithDescription("Generates the TypeScript declaration file (.d.ts) of a UI5 library from its api.json and returns its text."),
		mcp.WithString("library",
			mcp.Required(),
			mcp.Description("Library name, e.g. sap.m"),
		),
		mcp.WithBoolean("generate_globals",
			mcp.Description("Declare everything in the global namespace tree instead of ES modules"),
		),
	)
}

func lookupSymbolTool() mcp.Tool {
	return mcp.NewTool("lookup_symbol",
		mcp.WithDescription("Returns kind, module and rendered TypeScript declaration of a UI5 symbol. The owning library is generated on demand."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Fully qualified name, e.g. sap.m.Button"),
		),
	)
}

func searchSymbolsTool() mcp.Tool {
	return mcp.NewTool("search_symbols",
		mcp.WithDescription("Lists generated symbols whose fully qualified name starts with a prefix."),
		mcp.WithString("prefix",
			mcp.Required(),
			mcp.Description("Name prefix, e.g. sap.m.Button"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default 20)"),
		),
	)
}
