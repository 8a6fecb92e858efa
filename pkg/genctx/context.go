// Package genctx holds the state of one declaration generation run. A Context
// is created per library and passed to every pipeline phase; nothing in the
// pipeline keeps run state in package variables.
package genctx

import (
	"context"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"

	"github.com/gnana997/ui5dts/pkg/apijson"
)

// Context is the explicit state of one generation run.
type Context struct {
	Library string
	Version string

	// Universe indexes the fixed symbols of the library and all of its
	// dependencies.
	Universe *apijson.TypeUniverse

	// Directives are the merged directives of the run. They are read-only.
	Directives *apijson.Directives

	// GenerateGlobals declares every symbol in the global sap namespace
	// instead of in modules.
	GenerateGlobals bool

	Logger *slog.Logger
}

// New creates a context for library. The logger is taken from ctx and carries
// the library name.
func New(ctx context.Context, library, version string) *Context {
	ctx = slogctx.With(ctx, "library", library)
	return &Context{
		Library:    library,
		Version:    version,
		Directives: &apijson.Directives{},
		Logger:     slogctx.FromCtx(ctx),
	}
}

// Log returns the run logger, never nil.
func (c *Context) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// IgnoreReason reports whether fqn is listed in fqnToIgnore, and the reason
// given for it.
func (c *Context) IgnoreReason(fqn string) (string, bool) {
	if c == nil || c.Directives == nil {
		return "", false
	}
	reason, ok := c.Directives.FQNToIgnore[fqn]
	return reason, ok
}
