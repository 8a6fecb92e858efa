// Package parser parses TypeScript declaration text with tree-sitter. The
// syntax checker uses it to verify generated declaration files.
package parser

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	ts "github.com/tree-sitter/go-tree-sitter"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/ui5dts/pkg/util"
)

// ErrNilTree is returned when tree-sitter produces no tree, which only
// happens when parsing was cancelled or the parser has no language.
var ErrNilTree = errors.New("parser returned no tree")

// IsDeclarationFile reports whether path names a TypeScript declaration file.
func IsDeclarationFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), ".d.ts")
}

// ParserManager hands out pooled TypeScript parsers.
//
// Memory Management:
//   - The pool is created on first use and owned by the manager; Close frees it
//   - Callers own the returned trees and must call tree.Close()
//
// Thread Safety:
//   - Safe for concurrent use; each parse holds one pooled parser
//   - Pool size follows util.GetOptimalPoolSizeWithOverride
//
// Example:
//
//	manager := parser.NewParserManager(logger, 0)
//	defer manager.Close()
//
//	tree, err := manager.Parse([]byte(`declare module "sap/m/Button" {}`))
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	once     sync.Once
	pool     *parserPool
	poolSize int

	logger *slog.Logger

	parses atomic.Int64
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the number of parser instances created so far.
	ParsersCreated int

	// ParsesCalled is the number of Parse calls.
	ParsesCalled int64
}

// NewParserManager creates a manager whose pool holds up to poolSize parsers.
// A poolSize of 0 sizes the pool by CPU count.
func NewParserManager(logger *slog.Logger, poolSize int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserManager{
		poolSize: util.GetOptimalPoolSizeWithOverride(poolSize),
		logger:   logger,
	}
}

// Parse parses TypeScript source. Syntax errors do not fail the parse; they
// show up as ERROR and MISSING nodes in the returned tree.
func (pm *ParserManager) Parse(source []byte) (*ts.Tree, error) {
	pm.parses.Add(1)
	p, err := pm.getPool().acquire()
	if err != nil {
		return nil, errors.Wrap(err, "acquiring parser")
	}
	tree := p.Parse(source, nil)
	pm.getPool().release(p)

	if tree == nil {
		return nil, ErrNilTree
	}
	return tree, nil
}

func (pm *ParserManager) getPool() *parserPool {
	pm.once.Do(func() {
		pm.pool = newParserPool(ts_typescript.LanguageTypescript(), pm.poolSize, pm.logger)
		pm.logger.Debug("created parser pool", "maxSize", pm.poolSize)
	})
	return pm.pool
}

// Stats returns parser usage statistics.
func (pm *ParserManager) Stats() ParserStats {
	return ParserStats{
		ParsersCreated: pm.getPool().createdCount(),
		ParsesCalled:   pm.parses.Load(),
	}
}

// Close releases all pooled parsers. The manager must not be used afterwards.
func (pm *ParserManager) Close() error {
	pm.logger.Debug("closing parser manager", "parses_called", pm.parses.Load())
	pm.getPool().close()
	return nil
}
