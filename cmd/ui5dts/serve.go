package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/ui5dts/pkg/mcp"
	"github.com/gnana997/ui5dts/pkg/mcplog"
)

func newServeCmd(a *app) *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Serve the tools list_libraries, generate_declarations, lookup_symbol and
search_symbols over the Model Context Protocol on stdin and stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.openWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			gen, err := a.newGenerator()
			if err != nil {
				return err
			}
			callLog, err := mcplog.NewLogger(firstNonEmpty(logPath, a.cfg.MCPLog))
			if err != nil {
				return err
			}
			if callLog != nil {
				defer callLog.Close()
			}
			return mcpserver.NewServer(ws, gen, callLog, a.logger).ServeStdio()
		},
	}
	cmd.Flags().StringVar(&logPath, "call-log", "", "append every tool call to this JSONL file")
	return cmd
}
