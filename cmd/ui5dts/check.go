package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/gnana997/ui5dts/pkg/parser"
	"github.com/gnana997/ui5dts/pkg/validator"
)

func newCheckCmd(a *app) *cobra.Command {
	var req validator.CheckRequest
	cmd := &cobra.Command{
		Use:   "check <file.d.ts>",
		Short: "Syntax-check a declaration file",
		Long: `Parse a declaration file and report syntax errors, modules declared
twice, and, when dependency files are given, imports of modules that no
file declares.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.MainFile = args[0]
			if !parser.IsDeclarationFile(req.MainFile) {
				a.logger.Warn("file does not end in .d.ts", "file", req.MainFile)
			}
			checker, release := a.newChecker()
			defer release()

			res, err := checker.Check(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), res.Report)
			if !res.Success {
				return errors.Newf("%s failed the syntax check", req.MainFile)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&req.DependencyFiles, "dep", nil, "declaration file of a dependency (repeatable)")
	cmd.Flags().StringVar(&req.ErrorOutputFile, "report", "", "also write the report to this file")
	return cmd
}
