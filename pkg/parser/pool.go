package parser

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool keeps up to maxSize parsers for one grammar.
//
// Design:
//   - Buffered channel of idle parsers
//   - Parsers are created lazily until maxSize, then callers wait
//
// Thread Safety:
//   - Channel operations hand parsers between goroutines
//   - Mutex protects the created count
type parserPool struct {
	idle     chan *ts.Parser
	language unsafe.Pointer
	maxSize  int

	mu      sync.Mutex
	created int

	logger *slog.Logger
}

func newParserPool(language unsafe.Pointer, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		idle:     make(chan *ts.Parser, maxSize),
		language: language,
		maxSize:  maxSize,
		logger:   logger,
	}
}

// acquire returns an idle parser, creates one, or waits for a release once
// maxSize parsers exist.
func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.idle:
		return parser, nil
	default:
	}

	p.mu.Lock()
	if p.created >= p.maxSize {
		p.mu.Unlock()
		return <-p.idle, nil
	}
	defer p.mu.Unlock()

	parser := ts.NewParser()
	if parser == nil {
		return nil, errors.New("creating tree-sitter parser")
	}
	if err := parser.SetLanguage(ts.NewLanguage(p.language)); err != nil {
		parser.Close()
		return nil, errors.Wrap(err, "setting TypeScript grammar")
	}
	p.created++
	p.logger.Debug("created parser in pool", "pool_size", p.created)
	return parser, nil
}

// release returns parser to the pool.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	select {
	case p.idle <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser")
	}
}

// close closes every idle parser. The pool must not be used afterwards.
func (p *parserPool) close() {
	close(p.idle)
	count := 0
	for parser := range p.idle {
		parser.Close()
		count++
	}
	p.logger.Debug("closed parser pool", "parsers_closed", count)
}

func (p *parserPool) createdCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
