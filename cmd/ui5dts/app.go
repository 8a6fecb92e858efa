package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/generator"
	"github.com/gnana997/ui5dts/pkg/parser"
	"github.com/gnana997/ui5dts/pkg/postprocess"
	"github.com/gnana997/ui5dts/pkg/util"
	"github.com/gnana997/ui5dts/pkg/validator"
	"github.com/gnana997/ui5dts/pkg/workspace"
)

const defaultOutDir = "types"

// globalOptions are the persistent flags of the root command.
type globalOptions struct {
	configPath string
	apiDir     string
	outDir     string
	logLevel   string
	logFormat  string
}

// app carries what the commands share: the resolved config, the logger and
// the file cache behind all api.json reads.
type app struct {
	opts   globalOptions
	cfg    ProjectConfig
	logger *slog.Logger
	cache  util.FileCache
	loader *apijson.Loader
}

// setup loads the config and builds the logger. It runs before every command.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadProjectConfig(a.opts.configPath)
	if err != nil {
		return err
	}
	if cfg != nil {
		a.cfg = *cfg
	}

	a.logger = util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(firstNonEmpty(a.opts.logLevel, a.cfg.LogLevel, string(util.LevelInfo))),
		Format: util.LogFormat(firstNonEmpty(a.opts.logFormat, a.cfg.LogFormat, string(util.FormatPretty))),
		Output: cmd.ErrOrStderr(),
	})
	util.SetDefault(a.logger)

	cacheCfg := util.DefaultFileCacheConfig()
	cacheCfg.Logger = a.logger
	a.cache = util.NewFileCache(cacheCfg)
	a.loader = apijson.NewLoader(a.cache, a.logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(util.WithLogger(ctx, a.logger))
	return nil
}

func (a *app) close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

func (a *app) apiDir() string {
	return firstNonEmpty(a.opts.apiDir, a.cfg.APIDir, ".")
}

func (a *app) outDir() string {
	return firstNonEmpty(a.opts.outDir, a.cfg.OutDir, defaultOutDir)
}

func (a *app) openWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	return workspace.Open(ctx, a.apiDir(), a.loader, workspace.Options{
		DirectiveFiles: a.cfg.Directives,
		Dependencies:   a.cfg.Dependencies,
	})
}

func (a *app) newGenerator() (*generator.Generator, error) {
	return generator.New(
		generator.WithLogger(a.logger),
		generator.WithHooks(postprocess.NewPreambles(a.cfg.Preambles, a.cache, a.logger)),
	)
}

// newChecker returns a syntax checker and a function releasing its parsers.
func (a *app) newChecker() (*validator.SyntaxChecker, func()) {
	parsers := parser.NewParserManager(a.logger, 0)
	return validator.NewSyntaxChecker(parsers, a.logger), func() { _ = parsers.Close() }
}

// out is where commands print their results.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
