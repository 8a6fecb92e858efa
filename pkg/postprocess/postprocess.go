// Package postprocess runs the final, order sensitive hooks over generated
// declaration text.
package postprocess

import (
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/gnana997/ui5dts/pkg/util"
)

// Output is the result of one generation run. Hooks may rewrite DTSText.
type Output struct {
	Library string
	DTSText string
}

// Options describe the run the output comes from.
type Options struct {
	GenerateGlobals bool
}

// Hook modifies an output in place.
type Hook interface {
	Apply(out *Output, opts Options) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(out *Output, opts Options) error

// Apply calls f.
func (f HookFunc) Apply(out *Output, opts Options) error { return f(out, opts) }

// Chain applies its hooks in order and stops at the first error.
type Chain []Hook

// Apply implements Hook.
func (c Chain) Apply(out *Output, opts Options) error {
	for _, h := range c {
		if err := h.Apply(out, opts); err != nil {
			return err
		}
	}
	return nil
}

// Preambles prepends a hand-written file to the output of selected
// libraries. The version comment stays the first line.
//
// **Thread Safety:** safe for concurrent use if the FileCache is.
type Preambles struct {
	files  map[string]string
	cache  util.FileCache
	logger *slog.Logger
}

// NewPreambles creates the hook. files maps a library name to the path of
// its preamble.
func NewPreambles(files map[string]string, cache util.FileCache, logger *slog.Logger) *Preambles {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = util.NewFileCache(util.UnboundedFileCacheConfig())
	}
	return &Preambles{files: files, cache: cache, logger: logger}
}

// Apply implements Hook. Preambles are only meant for module declarations,
// so global runs are left alone.
func (p *Preambles) Apply(out *Output, opts Options) error {
	path, ok := p.files[out.Library]
	if !ok || opts.GenerateGlobals {
		return nil
	}
	data, err := p.cache.Read(path)
	if err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "reading preamble for %s", out.Library),
			"check the preambles section of the project config")
	}
	preamble := strings.TrimRight(string(data), "\n") + "\n\n"

	header, rest, found := strings.Cut(out.DTSText, "\n")
	if !found || !strings.HasPrefix(header, "// For Library Version:") {
		out.DTSText = preamble + out.DTSText
	} else {
		out.DTSText = header + "\n\n" + preamble + strings.TrimLeft(rest, "\n")
	}
	p.logger.Debug("prepended preamble", "library", out.Library, "path", path, "bytes", len(data))
	return nil
}
