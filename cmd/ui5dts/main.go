// Command ui5dts generates TypeScript declaration files from UI5 api.json
// files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ui5dts",
		Short: "Generate TypeScript declarations from UI5 api.json files",
		Long: `ui5dts turns the api.json files produced by the UI5 JSDoc build into
TypeScript declaration files (.d.ts), one per library.

Settings are read from .ui5dts/config.yaml; flags override them.

Examples:
  ui5dts generate sap.m                # write types/sap.m.d.ts
  ui5dts generate --all --check        # every library, syntax-checked
  ui5dts inspect sap.m.Button          # show one declaration
  ui5dts watch sap.m                   # regenerate on api.json changes
  ui5dts serve                         # MCP server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", defaultConfigPath, "project config file")
	flags.StringVar(&a.opts.apiDir, "api-dir", "", "directory searched for api.json and .dtsgenrc files (default \".\")")
	flags.StringVarP(&a.opts.outDir, "out-dir", "o", "", "output directory for .d.ts files (default \""+defaultOutDir+"\")")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&a.opts.logFormat, "log-format", "", "pretty, text or json")

	root.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(a),
		newInspectCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newSetupCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(out(cmd), "ui5dts %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
