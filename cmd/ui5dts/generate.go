package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/gnana997/ui5dts/pkg/generator"
	"github.com/gnana997/ui5dts/pkg/validator"
	"github.com/gnana997/ui5dts/pkg/workspace"
)

type generateOptions struct {
	all     bool
	globals bool
	check   bool
	stdout  bool
}

func newGenerateCmd(a *app) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate [library...]",
		Short: "Generate .d.ts files",
		Long: `Generate the declaration file of each named library into the output
directory as <library>.d.ts. Without arguments the libraries listed in the
config are generated.

Dependencies are found in the api.json files under --api-dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.all, "all", false, "generate every library found")
	cmd.Flags().BoolVar(&opts.globals, "globals", false, "declare the global namespace tree instead of ES modules")
	cmd.Flags().BoolVar(&opts.check, "check", false, "syntax-check the generated files")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print declarations instead of writing files")
	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, opts generateOptions, args []string) error {
	ctx := cmd.Context()
	ws, err := a.openWorkspace(ctx)
	if err != nil {
		return err
	}
	libraries, err := targetLibraries(ws, a.cfg.Libraries, opts.all, args)
	if err != nil {
		return err
	}
	gen, err := a.newGenerator()
	if err != nil {
		return err
	}

	globals := opts.globals || a.cfg.GenerateGlobals
	var written []string
	for _, lib := range libraries {
		res, err := generateLibrary(ctx, ws, gen, lib, globals)
		if err != nil {
			return err
		}
		if opts.stdout {
			fmt.Fprint(out(cmd), res.DTSText)
			continue
		}
		path, err := writeDeclarations(a.outDir(), res)
		if err != nil {
			return err
		}
		written = append(written, path)
		fmt.Fprintf(out(cmd), "%-40s %8s  %4d modules  %3d overloads  %s\n",
			path, humanize.Bytes(uint64(len(res.DTSText))), res.Modules, res.Overloads, res.Duration.Round(time.Millisecond))
	}

	if opts.check || a.cfg.Check {
		if opts.stdout {
			a.logger.Warn("--check needs written files, skipped with --stdout")
			return nil
		}
		return checkWritten(cmd, a, ws, written, libraries)
	}
	return nil
}

// targetLibraries applies the chain: --all, arguments, config libraries.
func targetLibraries(ws *workspace.Workspace, configured []string, all bool, args []string) ([]string, error) {
	switch {
	case all:
		var names []string
		for _, lib := range ws.Libraries() {
			names = append(names, lib.Name)
		}
		return names, nil
	case len(args) > 0:
		return args, nil
	case len(configured) > 0:
		return configured, nil
	}
	return nil, errors.WithHint(errors.New("no library to generate"),
		"name libraries as arguments, pass --all, or list them under libraries in .ui5dts/config.yaml")
}

func generateLibrary(ctx context.Context, ws *workspace.Workspace, gen *generator.Generator, lib string, globals bool) (*generator.Result, error) {
	req, err := ws.Request(lib, globals)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, req)
}

func declarationPath(outDir, library string) string {
	return filepath.Join(outDir, library+".d.ts")
}

func writeDeclarations(outDir string, res *generator.Result) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", outDir)
	}
	path := declarationPath(outDir, res.Library)
	if err := os.WriteFile(path, []byte(res.DTSText), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}

// checkWritten syntax-checks each written file against the written or
// previously generated files of its dependencies.
func checkWritten(cmd *cobra.Command, a *app, ws *workspace.Workspace, files, libraries []string) error {
	checker, release := a.newChecker()
	defer release()

	failed := 0
	for i, file := range files {
		deps, err := ws.Dependencies(libraries[i])
		if err != nil {
			return err
		}
		var depFiles []string
		for _, dep := range deps {
			if path := declarationPath(a.outDir(), dep); fileExists(path) {
				depFiles = append(depFiles, path)
			}
		}
		res, err := checker.Check(cmd.Context(), validator.CheckRequest{MainFile: file, DependencyFiles: depFiles})
		if err != nil {
			return err
		}
		if len(res.Violations) > 0 {
			fmt.Fprint(out(cmd), res.Report)
		}
		if !res.Success {
			failed++
		}
	}
	if failed > 0 {
		return errors.Newf("%d declaration file(s) failed the syntax check", failed)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
