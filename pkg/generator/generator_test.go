package generator

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/ui5dts/pkg/apijson"
	"github.com/gnana997/ui5dts/pkg/ast"
	"github.com/gnana997/ui5dts/pkg/postprocess"
	"github.com/gnana997/ui5dts/pkg/util"
)

const coreJSON = `{
  "library": "sap.ui.core",
  "version": "1.120.0",
  "symbols": [
    {"kind": "class", "name": "sap.ui.base.Object", "module": "sap/ui/base/Object", "export": "", "visibility": "public"},
    {"kind": "class", "name": "sap.ui.base.ManagedObject", "module": "sap/ui/base/ManagedObject", "export": "", "visibility": "public",
     "extends": "sap.ui.base.Object"},
    {"kind": "class", "name": "sap.ui.core.Element", "module": "sap/ui/core/Element", "export": "", "visibility": "public",
     "extends": "sap.ui.base.ManagedObject"},
    {"kind": "class", "name": "sap.ui.core.Control", "module": "sap/ui/core/Control", "export": "", "visibility": "public",
     "extends": "sap.ui.core.Element"}
  ]
}`

const mJSON = `{
  "library": "sap.m",
  "version": "1.120.0",
  "symbols": [
    {"kind": "namespace", "name": "sap.m", "module": "sap/m/library", "export": "", "visibility": "public"},
    {"kind": "enum", "name": "sap.m.ButtonType", "module": "sap/m/library", "export": "ButtonType", "visibility": "public",
     "properties": [
       {"name": "Accept", "value": "Accept", "visibility": "public", "static": true},
       {"name": "Reject", "value": "Reject", "visibility": "public", "static": true}
     ]},
    {"kind": "class", "name": "sap.m.Button", "module": "sap/m/Button", "export": "", "visibility": "public",
     "extends": "sap.ui.core.Control",
     "description": "Enables users to trigger actions.",
     "ui5-metadata": {
       "properties": [
         {"name": "text", "type": "string", "visibility": "public"},
         {"name": "type", "type": "sap.m.ButtonType", "visibility": "public"}
       ]
     },
     "methods": [
       {"name": "foo", "visibility": "public", "parameters": [
         {"name": "a", "type": "string"},
         {"name": "b", "type": "string", "optional": true},
         {"name": "c", "type": "string"}
       ]}
     ]}
  ]
}`

func decode(t *testing.T, data string) *apijson.Document {
	t.Helper()
	doc, err := apijson.DecodeDocument([]byte(data))
	require.NoError(t, err)
	return doc
}

func request(t *testing.T) Request {
	t.Helper()
	return Request{Target: decode(t, mJSON), Dependencies: []*apijson.Document{decode(t, coreJSON)}}
}

func newGenerator(t *testing.T, buf *bytes.Buffer, opts ...Option) *Generator {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g, err := New(append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return g
}

func TestGenerate_Button(t *testing.T) {
	var buf bytes.Buffer
	g := newGenerator(t, &buf)

	res, err := g.Generate(context.Background(), request(t))
	require.NoError(t, err)
	out := res.DTSText

	assert.Equal(t, "sap.m", res.Library)
	assert.True(t, strings.HasPrefix(out, "// For Library Version: 1.120.0\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, "declare namespace sap {")
	assert.Greater(t, strings.LastIndex(out, "declare namespace sap"), strings.LastIndex(out, "declare module"))

	assert.Contains(t, out, `declare module "sap/m/Button" {`)
	assert.Contains(t, out, `{ ButtonType } from "sap/m/library";`)
	assert.Contains(t, out, "export default class Button extends Control {")
	assert.Contains(t, out, "getText(): string;")
	assert.Contains(t, out, "setText(text: string): this;")
	assert.Contains(t, out, "getType(): ButtonType;")
	assert.Contains(t, out, "setType(type: (ButtonType | keyof typeof ButtonType)): this;")
	assert.Contains(t, out, "foo(a: string, b: string, c: string): void;")
	assert.Contains(t, out, "foo(a: string, c: string): void;")
	assert.Contains(t, out, "extends $ControlSettings")
	assert.Contains(t, out, "export enum ButtonType {")

	assert.Equal(t, 1, res.Overloads)
	assert.Contains(t, buf.String(), "AUTOFIXING")
	assert.Contains(t, buf.String(), "sap.m.Button.foo")
}

func TestGenerate_RoundTripIsStable(t *testing.T) {
	var buf bytes.Buffer
	g := newGenerator(t, &buf)
	req := request(t)
	before, err := apijson.EncodeDocument(req.Target)
	require.NoError(t, err)

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.DTSText, second.DTSText)
	after, err := apijson.EncodeDocument(req.Target)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "target document was modified")

	stats := g.Cache().Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestGenerate_ConcurrentRunsShareCache(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	g, err := New(WithLogger(logger))
	require.NoError(t, err)

	var wg sync.WaitGroup
	texts := make([]string, 4)
	reqs := make([]Request, len(texts))
	for i := range reqs {
		reqs[i] = request(t)
	}
	for i := range texts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := g.Generate(context.Background(), reqs[i])
			if assert.NoError(t, err) {
				texts[i] = res.DTSText
			}
		}()
	}
	wg.Wait()
	for _, text := range texts[1:] {
		assert.Equal(t, texts[0], text)
	}
}

func TestGenerate_SymbolTableAndRender(t *testing.T) {
	var buf bytes.Buffer
	g := newGenerator(t, &buf)
	_, err := g.Generate(context.Background(), request(t))
	require.NoError(t, err)

	entry, text, ok := g.Render(context.Background(), "sap.m.Button")
	require.True(t, ok)
	assert.Equal(t, ast.KindClass, entry.Kind())
	assert.Equal(t, "sap/m/Button", entry.Module)
	assert.True(t, entry.Default)
	assert.Contains(t, text, "class Button extends Control {")
	assert.Contains(t, text, "Enables users to trigger actions.")

	_, _, ok = g.Render(context.Background(), "sap.m.Missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"sap.m"}, g.Symbols().Libraries())
}

func TestGenerate_Globals(t *testing.T) {
	var buf bytes.Buffer
	g := newGenerator(t, &buf)
	req := request(t)
	req.GenerateGlobals = true

	res, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.NotContains(t, res.DTSText, "declare module")
	assert.Contains(t, res.DTSText, "class Button extends ui.core.Control {")
}

func TestGenerate_Hooks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preamble.d.ts")
	require.NoError(t, os.WriteFile(path, []byte("/// <reference types=\"jquery\" />\n"), 0o644))
	cache := util.NewFileCache(util.UnboundedFileCacheConfig())
	defer cache.Close()

	var buf bytes.Buffer
	g := newGenerator(t, &buf, WithHooks(postprocess.NewPreambles(map[string]string{"sap.m": path}, cache, nil)))
	res, err := g.Generate(context.Background(), request(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.DTSText, "// For Library Version: 1.120.0\n\n/// <reference types=\"jquery\" />\n"))
}

func TestGenerate_IgnoreDirective(t *testing.T) {
	var buf bytes.Buffer
	g := newGenerator(t, &buf)
	req := request(t)
	req.Directives = &apijson.Directives{FQNToIgnore: map[string]string{"sap.m.Button.foo": "overload clash"}}

	res, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(res.DTSText, "// @ts-ignore - overload clash"))
}

func TestGenerate_EditedDependencySameVersion(t *testing.T) {
	var buf bytes.Buffer
	g := newGenerator(t, &buf)

	first, err := g.Generate(context.Background(), request(t))
	require.NoError(t, err)
	assert.Contains(t, first.DTSText, `from "sap/ui/core/Control"`)

	edited := strings.Replace(coreJSON, `"module": "sap/ui/core/Control"`, `"module": "sap/ui/core/NewControl"`, 1)
	req := request(t)
	req.Dependencies = []*apijson.Document{decode(t, edited)}
	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, second.DTSText, `from "sap/ui/core/NewControl"`)
	assert.NotContains(t, second.DTSText, `from "sap/ui/core/Control"`)
	assert.Equal(t, 2, g.Cache().Len())
}

func TestDependencyKey(t *testing.T) {
	core := decode(t, coreJSON)
	key, err := DependencyKey(core, nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "sap.ui.core@1.120.0#"))

	same, err := DependencyKey(decode(t, coreJSON), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, key, same)

	edited := decode(t, strings.Replace(coreJSON, "sap/ui/core/Control", "sap/ui/core/NewControl", 1))
	other, err := DependencyKey(edited, nil, nil)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	directives := &apijson.Directives{BadSymbols: []string{"sap.ui.core.Control"}}
	withDirectives, err := DependencyKey(core, directives, nil)
	require.NoError(t, err)
	assert.NotEqual(t, key, withDirectives)

	withPrior, err := DependencyKey(core, nil, []string{"sap.ui.base@1.0.0#0"})
	require.NoError(t, err)
	assert.NotEqual(t, key, withPrior)
}

func TestGenerate_MissingTarget(t *testing.T) {
	var buf bytes.Buffer
	_, err := newGenerator(t, &buf).Generate(context.Background(), Request{})
	assert.Error(t, err)
}

func TestDependencyCache(t *testing.T) {
	cache, err := NewDependencyCache(2)
	require.NoError(t, err)

	core := decode(t, coreJSON)
	key := CacheKey(core)
	assert.Equal(t, "sap.ui.core@1.120.0", key)

	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Add(key, core)
	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.NotSame(t, core, got)
	got.Symbols = nil
	again, _ := cache.Get(key)
	assert.Len(t, again.Symbols, 4)

	cache.Add("a@1", &apijson.Document{Library: "a"})
	cache.Add("b@1", &apijson.Document{Library: "b"})
	assert.Equal(t, 2, cache.Len())
	_, ok = cache.Get(key)
	assert.False(t, ok, "oldest entry should be evicted")

	cache.Clear()
	assert.Zero(t, cache.Len())
	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
