package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/ui5dts/pkg/generator"
	"github.com/gnana997/ui5dts/pkg/watch"
	"github.com/gnana997/ui5dts/pkg/workspace"
)

func newWatchCmd(a *app) *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "watch [library...]",
		Short: "Regenerate when api.json or directive files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

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

			regenerate := a.regenerator(ws, gen, libraries, opts.globals || a.cfg.GenerateGlobals)
			regenerate(ctx, nil)

			w, err := watch.New(regenerate, watch.DefaultOptions(), a.logger)
			if err != nil {
				return err
			}
			if err := w.Start(ctx, a.apiDir()); err != nil {
				return err
			}
			defer w.Stop()

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.all, "all", false, "regenerate every library found")
	cmd.Flags().BoolVar(&opts.globals, "globals", false, "declare the global namespace tree instead of ES modules")
	return cmd
}

// regenerator returns the watch handler. A nil batch generates without
// reloading; any other batch reloads the workspace and drops the fixed
// dependencies, whose sources may have changed.
func (a *app) regenerator(ws *workspace.Workspace, gen *generator.Generator, libraries []string, globals bool) watch.Handler {
	return func(ctx context.Context, changed []string) {
		if changed != nil {
			if err := ws.Reload(ctx); err != nil {
				a.logger.Error("reloading api.json files failed", "error", err)
				return
			}
			gen.Cache().Clear()
		}
		for _, lib := range libraries {
			res, err := generateLibrary(ctx, ws, gen, lib, globals)
			if err != nil {
				a.logger.Error("generation failed", "library", lib, "error", err)
				continue
			}
			if _, err := writeDeclarations(a.outDir(), res); err != nil {
				a.logger.Error("writing declarations failed", "library", lib, "error", err)
			}
		}
	}
}
