package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/gnana997/ui5dts/pkg/symtab"
)

type inspectOptions struct {
	library string
	ast     bool
	globals bool
}

func newInspectCmd(a *app) *cobra.Command {
	var opts inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show the generated declaration of one symbol",
		Long: `Generate the library owning a symbol and print where the symbol is
declared and how it is rendered. --ast dumps the declaration tree instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, a, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.library, "library", "", "library owning the symbol (default: derived from the name)")
	cmd.Flags().BoolVar(&opts.ast, "ast", false, "dump the declaration tree")
	cmd.Flags().BoolVar(&opts.globals, "globals", false, "inspect the global namespace variant")
	return cmd
}

func runInspect(cmd *cobra.Command, a *app, opts inspectOptions, name string) error {
	ctx := cmd.Context()
	ws, err := a.openWorkspace(ctx)
	if err != nil {
		return err
	}
	library := opts.library
	if library == "" {
		var ok bool
		if library, ok = ws.OwningLibrary(name); !ok {
			return errors.WithHint(errors.Newf("no library declares %s", name), "pass --library")
		}
	}
	gen, err := a.newGenerator()
	if err != nil {
		return err
	}
	if _, err := generateLibrary(ctx, ws, gen, library, opts.globals); err != nil {
		return err
	}

	entry, text, ok := gen.Render(ctx, name)
	if !ok {
		return errors.Newf("%s is not declared in the generated %s declarations", name, library)
	}
	w := out(cmd)
	if opts.ast {
		printer := pp.New()
		printer.SetColoringEnabled(false)
		printer.SetExportedOnly(true)
		fmt.Fprintln(w, printer.Sprint(entry.Node))
		return nil
	}
	printEntry(w, entry, text)
	return nil
}

func printEntry(w io.Writer, e *symtab.Entry, text string) {
	fmt.Fprintf(w, "%s  [%s]\n", e.FQN, e.Kind())
	fmt.Fprintf(w, "  library  %s\n", e.Library)
	if e.Module != "" {
		export := e.Export
		if e.Default {
			export = "default"
		}
		if export != "" {
			fmt.Fprintf(w, "  module   %s (%s export)\n", e.Module, export)
		} else {
			fmt.Fprintf(w, "  module   %s\n", e.Module)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimRight(text, "\n"))
}
