// Package workspace discovers api.json and directive files under a root
// directory, loads them in parallel, and resolves the dependency order of
// libraries for generation requests.
package workspace

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/generator"
	"github.com/gnana997/ui5dts/pkg/util"
)

// ErrUnknownLibrary is returned for a library no api.json in the workspace
// declares.
var ErrUnknownLibrary = errors.New("unknown library")

// Options configure discovery.
type Options struct {
	// DocumentPatterns select api.json files. Defaults to DefaultDocumentPatterns.
	DocumentPatterns []string
	// DirectivePatterns select .dtsgenrc files. Defaults to DefaultDirectivePatterns.
	DirectivePatterns []string
	// DirectiveFiles are loaded after the discovered directive files.
	DirectiveFiles []string
	// Exclude defaults to DefaultExclude.
	Exclude []string
	// Dependencies add explicit dependencies per library to the inferred ones.
	Dependencies map[string][]string
	// Concurrency bounds parallel loading. 0 sizes it by CPU count.
	Concurrency int
}

func (o *Options) withDefaults() Options {
	out := *o
	if len(out.DocumentPatterns) == 0 {
		out.DocumentPatterns = DefaultDocumentPatterns
	}
	if len(out.DirectivePatterns) == 0 {
		out.DirectivePatterns = DefaultDirectivePatterns
	}
	if out.Exclude == nil {
		out.Exclude = DefaultExclude
	}
	out.Concurrency = util.GetOptimalPoolSizeWithOverride(out.Concurrency)
	return out
}

// Library is one loaded api.json document.
type Library struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
	Symbols int    `json:"symbols"`

	doc *apijson.Document
}

// Document returns the loaded document. Callers must not modify it.
func (l *Library) Document() *apijson.Document { return l.doc }

// Workspace holds the libraries and directives found under a root.
//
// **Thread Safety:** safe for concurrent use. Reload swaps the loaded state
// under a write lock.
type Workspace struct {
	root   string
	opts   Options
	loader *apijson.Loader
	logger *slog.Logger

	mu             sync.RWMutex
	libraries      map[string]*Library
	documentFiles  []string
	directiveFiles []string
	directives     *apijson.Directives
}

// Open discovers and loads the workspace at root. A nil loader gets a
// private one.
func Open(ctx context.Context, root string, loader *apijson.Loader, opts Options) (*Workspace, error) {
	logger := util.LoggerFrom(ctx)
	if loader == nil {
		loader = apijson.NewLoader(nil, logger)
	}
	w := &Workspace{root: root, opts: opts.withDefaults(), loader: loader, logger: logger}
	if err := w.Reload(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Reload rediscovers and reloads every file. Files that fail to load are
// logged and skipped; Reload fails only when no library could be loaded or
// the directives are broken.
func (w *Workspace) Reload(ctx context.Context) error {
	docFiles, err := DiscoverFiles(w.root, w.opts.DocumentPatterns, w.opts.Exclude)
	if err != nil {
		return err
	}
	dirFiles, err := DiscoverFiles(w.root, w.opts.DirectivePatterns, w.opts.Exclude)
	if err != nil {
		return err
	}
	dirFiles = append(dirFiles, w.opts.DirectiveFiles...)

	libraries, loadErr := w.loadAll(ctx, docFiles)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if loadErr != nil {
		w.logger.Warn("some api.json files could not be loaded", "error", loadErr)
	}
	if len(libraries) == 0 {
		err := errors.Newf("no api.json found under %s", w.root)
		if loadErr != nil {
			err = errors.CombineErrors(err, loadErr)
		}
		return errors.WithHint(err, "set api_dir in .ui5dts/config.yaml or pass --api-dir")
	}

	for _, path := range dirFiles {
		_ = w.loader.Invalidate(path)
	}
	directives, err := w.loader.LoadDirectives(dirFiles...)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.libraries = libraries
	w.documentFiles = docFiles
	w.directiveFiles = dirFiles
	w.directives = directives
	w.mu.Unlock()

	w.logger.Info("loaded workspace",
		"root", w.root,
		"libraries", len(libraries),
		"directive_files", len(dirFiles))
	return nil
}

// loadAll loads files in parallel. Per-file failures are collected into a
// multierror; the first file wins for duplicate library names.
func (w *Workspace) loadAll(ctx context.Context, files []string) (map[string]*Library, error) {
	docs := make([]*apijson.Document, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Invalidate so that Reload sees changed files.
			_ = w.loader.Invalidate(path)
			docs[i], errs[i] = w.loader.LoadDocument(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result *multierror.Error
	libraries := make(map[string]*Library, len(files))
	for i, doc := range docs {
		if errs[i] != nil {
			result = multierror.Append(result, errs[i])
			continue
		}
		if first, ok := libraries[doc.Library]; ok {
			w.logger.Warn("library declared twice, keeping first", "library", doc.Library, "kept", first.Path, "skipped", files[i])
			continue
		}
		libraries[doc.Library] = &Library{
			Name:    doc.Library,
			Version: doc.Version,
			Path:    files[i],
			Symbols: len(doc.Symbols),
			doc:     doc,
		}
	}
	return libraries, result.ErrorOrNil()
}

// Libraries returns the loaded libraries sorted by name.
func (w *Workspace) Libraries() []*Library {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Library, 0, len(w.libraries))
	for _, lib := range w.libraries {
		out = append(out, lib)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Library returns the library with the given name.
func (w *Workspace) Library(name string) (*Library, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	lib, ok := w.libraries[name]
	return lib, ok
}

// OwningLibrary returns the library declaring the longest symbol name that
// is fqn or a dotted prefix of it. Failing that, it returns the longest
// library name that is a dotted prefix of fqn.
func (w *Workspace) OwningLibrary(fqn string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	covers := func(prefix string) bool {
		return fqn == prefix || strings.HasPrefix(fqn, prefix+".")
	}

	bySymbol, symbolLen := "", 0
	byName := ""
	for name, lib := range w.libraries {
		for _, sym := range lib.doc.Symbols {
			if len(sym.Name) > symbolLen && covers(sym.Name) {
				bySymbol, symbolLen = name, len(sym.Name)
			}
		}
		if len(name) > len(byName) && covers(name) {
			byName = name
		}
	}
	if bySymbol != "" {
		return bySymbol, true
	}
	return byName, byName != ""
}

// Files returns every discovered api.json and directive file.
func (w *Workspace) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.documentFiles)+len(w.directiveFiles))
	out = append(out, w.documentFiles...)
	return append(out, w.directiveFiles...)
}

// Directives returns the merged directives.
func (w *Workspace) Directives() *apijson.Directives {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.directives
}

// Dependencies returns the libraries name depends on, transitively, each
// dependency before its dependents. A library depends on the libraries
// owning the symbols its symbols extend or implement, plus the explicit
// dependencies of Options.
func (w *Workspace) Dependencies(name string) ([]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dependenciesLocked(name)
}

func (w *Workspace) dependenciesLocked(name string) ([]string, error) {
	if _, ok := w.libraries[name]; !ok {
		return nil, errors.Wrapf(ErrUnknownLibrary, "%q", name)
	}

	owner := make(map[string]string)
	for _, lib := range w.libraries {
		for _, sym := range lib.doc.Symbols {
			if _, ok := owner[sym.Name]; !ok {
				owner[sym.Name] = lib.Name
			}
		}
	}

	var order []string
	state := make(map[string]int) // 1 visiting, 2 done
	var visit func(lib string)
	visit = func(lib string) {
		if state[lib] != 0 {
			return
		}
		state[lib] = 1
		for _, dep := range w.directDependencies(lib, owner) {
			visit(dep)
		}
		state[lib] = 2
		if lib != name {
			order = append(order, lib)
		}
	}
	visit(name)
	return order, nil
}

// directDependencies returns the sorted direct dependencies of lib. Callers
// hold the read lock.
func (w *Workspace) directDependencies(lib string, owner map[string]string) []string {
	seen := make(map[string]bool)
	for _, dep := range w.opts.Dependencies[lib] {
		if _, ok := w.libraries[dep]; ok {
			seen[dep] = true
		} else {
			w.logger.Warn("configured dependency not in workspace", "library", lib, "dependency", dep)
		}
	}
	for _, sym := range w.libraries[lib].doc.Symbols {
		refs := append(append([]string{}, sym.Extends...), sym.Implements...)
		for _, ref := range refs {
			if o, ok := owner[ref]; ok && o != lib {
				seen[o] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for dep := range seen {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

// Request builds a generation request for the library name with its
// dependencies and the workspace directives.
func (w *Workspace) Request(name string, generateGlobals bool) (generator.Request, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	deps, err := w.dependenciesLocked(name)
	if err != nil {
		return generator.Request{}, err
	}
	req := generator.Request{
		Target:          w.libraries[name].doc,
		Directives:      w.directives,
		GenerateGlobals: generateGlobals,
	}
	for _, dep := range deps {
		req.Dependencies = append(req.Dependencies, w.libraries[dep].doc)
	}
	return req, nil
}
