// Package generator runs the declaration pipeline for one library:
//
//	jsonfix → astbuild → symtab → asttransform → astfix → dtsgen → postprocess
//
// A Generator owns the caches shared by its runs: fixed dependency documents
// and the symbol table of every generated library.
package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/astbuild"
	"github.com/gnana997/ui5dts/pkg/astfix"
	"github.com/gnana997/ui5dts/pkg/asttransform"
	"github.com/gnana997/ui5dts/pkg/dtsgen"
	"github.com/gnana997/ui5dts/pkg/genctx"
	"github.com/gnana997/ui5dts/pkg/jsonfix"
	"github.com/gnana997/ui5dts/pkg/postprocess"
	"github.com/gnana997/ui5dts/pkg/symtab"
	"github.com/gnana997/ui5dts/pkg/util"
)

// Request describes one generation run.
type Request struct {
	// Target is the library to generate declarations for. It is not
	// modified.
	Target *apijson.Document
	// Dependencies are the documents of all libraries Target depends on,
	// transitively, dependencies before their dependents.
	Dependencies []*apijson.Document
	Directives   *apijson.Directives
	// GenerateGlobals declares everything in the global namespace tree.
	GenerateGlobals bool
}

// Result is the output of a run.
type Result struct {
	Library string
	Version string
	DTSText string

	Modules   int
	Overloads int
	Duration  time.Duration
}

// Generator runs generation requests.
//
// **Thread Safety:** safe for concurrent use. Runs share the dependency cache
// and the symbol table; everything else is per run.
type Generator struct {
	cache   *DependencyCache
	symbols *symtab.Table
	hooks   postprocess.Hook
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithCache shares a dependency cache between generators.
func WithCache(c *DependencyCache) Option {
	return func(g *Generator) { g.cache = c }
}

// WithSymbolTable shares a symbol table between generators.
func WithSymbolTable(t *symtab.Table) Option {
	return func(g *Generator) { g.symbols = t }
}

// WithHooks sets the post-processing hooks.
func WithHooks(hooks ...postprocess.Hook) Option {
	return func(g *Generator) { g.hooks = postprocess.Chain(hooks) }
}

// WithLogger sets the logger used when the request context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// New creates a Generator.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{hooks: postprocess.Chain(nil)}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.cache == nil {
		cache, err := NewDependencyCache(0)
		if err != nil {
			return nil, err
		}
		g.cache = cache
	}
	if g.symbols == nil {
		g.symbols = symtab.New(g.logger)
	}
	return g, nil
}

// Symbols returns the symbol table filled by the runs of g.
func (g *Generator) Symbols() *symtab.Table { return g.symbols }

// Cache returns the dependency cache of g.
func (g *Generator) Cache() *DependencyCache { return g.cache }

// Generate runs the pipeline for req.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Target == nil {
		return nil, errors.New("generation request without target document")
	}
	start := time.Now()
	if util.LoggerFrom(ctx) == slog.Default() {
		ctx = util.WithLogger(ctx, g.logger)
	}
	directives := req.Directives
	if directives == nil {
		directives = apijson.MergeDirectives()
	}

	gctx := genctx.New(ctx, req.Target.Library, req.Target.Version)
	gctx.Directives = directives
	gctx.GenerateGlobals = req.GenerateGlobals
	logger := gctx.Log()

	deps, err := g.fixDependencies(req.Dependencies, directives, logger)
	if err != nil {
		return nil, err
	}

	target := req.Target.Clone()
	err = jsonfix.Fix(target, jsonfix.Options{
		Directives:   directives,
		Dependencies: deps,
		Main:         true,
		Logger:       logger,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fixing %s", target.Library)
	}
	gctx.Universe = apijson.NewTypeUniverse(append([]*apijson.Document{target}, deps...)...)

	res, err := astbuild.Build(gctx, target)
	if err != nil {
		return nil, errors.Wrapf(err, "building declarations of %s", target.Library)
	}
	g.symbols.AddLibrary(target.Library, res.Modules, res.Globals)
	parents := asttransform.Transform(gctx, res)
	overloads := astfix.Fix(gctx, res, parents)

	out := &postprocess.Output{Library: target.Library, DTSText: dtsgen.Generate(gctx, res)}
	if err := g.hooks.Apply(out, postprocess.Options{GenerateGlobals: req.GenerateGlobals}); err != nil {
		return nil, errors.Wrapf(err, "post-processing %s", target.Library)
	}

	result := &Result{
		Library:   target.Library,
		Version:   target.Version,
		DTSText:   out.DTSText,
		Modules:   len(res.Modules),
		Overloads: overloads,
		Duration:  time.Since(start),
	}
	logger.Info("generated declarations",
		"modules", result.Modules,
		"overloads", result.Overloads,
		"bytes", len(result.DTSText),
		"duration", result.Duration)
	return result, nil
}

// fixDependencies returns the fixed form of every dependency, from the cache
// when possible. Each document is fixed against the ones before it.
func (g *Generator) fixDependencies(docs []*apijson.Document, directives *apijson.Directives, logger *slog.Logger) ([]*apijson.Document, error) {
	fixed := make([]*apijson.Document, 0, len(docs))
	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		key, err := DependencyKey(doc, directives, keys)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		if cached, ok := g.cache.Get(key); ok {
			fixed = append(fixed, cached)
			continue
		}
		cp := doc.Clone()
		err = jsonfix.Fix(cp, jsonfix.Options{
			Directives:   directives,
			Dependencies: fixed,
			Logger:       logger,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "fixing dependency %s", CacheKey(doc))
		}
		g.cache.Add(key, cp)
		logger.Debug("cached fixed dependency", "key", key)
		fixed = append(fixed, cp.Clone())
	}
	return fixed, nil
}

// Render renders the declaration registered for fqn in the symbol table.
func (g *Generator) Render(ctx context.Context, fqn string) (*symtab.Entry, string, bool) {
	entry, ok := g.symbols.Lookup(fqn)
	if !ok {
		return nil, "", false
	}
	gctx := genctx.New(ctx, entry.Library, "")
	return entry, dtsgen.RenderDeclaration(gctx, entry.Node), true
}
