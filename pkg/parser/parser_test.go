package parser

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const declarations = `// For Library Version: 1.120.0

declare module "sap/m/Button" {
  import Control from "sap/ui/core/Control";

  export default class Button extends Control {
    constructor(sId?: string);
    getText(): string;
  }
}

declare namespace sap {
  export interface IUI5DefineDependencyNames {
    "sap/m/Button": undefined;
  }
}
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseDeclarations(t *testing.T) {
	manager := NewParserManager(testLogger(), 0)
	defer manager.Close()

	tree, err := manager.Parse([]byte(declarations))
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
}

func TestParseInvalidSyntax(t *testing.T) {
	manager := NewParserManager(testLogger(), 0)
	defer manager.Close()

	tree, err := manager.Parse([]byte("declare module \"x\" {\n  export class {\n"))
	require.NoError(t, err, "syntax errors are reported in the tree")
	defer tree.Close()
	assert.True(t, tree.RootNode().HasError())
}

func TestLazyInitialization(t *testing.T) {
	manager := NewParserManager(testLogger(), 0)
	defer manager.Close()

	assert.Zero(t, manager.Stats().ParsersCreated)

	for range 2 {
		tree, err := manager.Parse([]byte("declare const x: number;"))
		require.NoError(t, err)
		tree.Close()
	}

	stats := manager.Stats()
	assert.Equal(t, 1, stats.ParsersCreated, "sequential parses reuse one parser")
	assert.Equal(t, int64(2), stats.ParsesCalled)
}

func TestConcurrentParsing(t *testing.T) {
	manager := NewParserManager(testLogger(), 4)
	defer manager.Close()

	const goroutines = 50
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := manager.Parse([]byte(declarations))
			if err != nil {
				errs <- err
				return
			}
			tree.Close()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	stats := manager.Stats()
	assert.LessOrEqual(t, stats.ParsersCreated, 4)
	assert.Equal(t, int64(goroutines), stats.ParsesCalled)
}

func TestIsDeclarationFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"out/sap.m.d.ts", true},
		{"SAP.M.D.TS", true},
		{"src/app.ts", false},
		{"api.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDeclarationFile(tt.path))
		})
	}
}
