// Package symtab flattens the declaration IR of generated libraries into a
// name → declaration lookup table.
package symtab

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gnana997/ui5dts/pkg/ast"
)

// Entry is one declaration of a library.
type Entry struct {
	FQN     string
	Library string
	// Module is the module exporting the declaration, empty for declarations
	// of the ambient namespace tree.
	Module string
	// Export is the export name within Module. Default exports use the local
	// name and set Default.
	Export  string
	Default bool
	Node    ast.Declaration
}

// Kind returns the IR kind of the declaration.
func (e *Entry) Kind() ast.NodeKind {
	return e.Node.Kind()
}

// Table provides lookups by fully qualified name across libraries.
//
// **Thread Safety:**
//   - Uses sync.RWMutex for concurrent access
//   - Multiple readers, single writer pattern
//   - Atomic counters for statistics
//
// **Usage:**
//
//	table := symtab.New(logger)
//	table.AddLibrary("sap.m", modules, globals)
//	entry, found := table.Lookup("sap.m.Button")
type Table struct {
	// Primary storage: FQN → Entry
	entries map[string]*Entry

	// Reverse index: library → []FQN, for replacing a regenerated library
	libraryToNames map[string][]string

	mu sync.RWMutex

	lookups atomic.Int64
	hits    atomic.Int64

	logger *slog.Logger
}

// Stats describes the table state.
type Stats struct {
	Libraries int
	Entries   int
	Lookups   int64
	Hits      int64
}

// New creates an empty table.
func New(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{
		entries:        make(map[string]*Entry, 4096),
		libraryToNames: make(map[string][]string),
		logger:         logger,
	}
}

// AddLibrary indexes the modules and ambient namespaces of library,
// replacing entries of an earlier run for the same library. It returns the
// number of indexed declarations.
//
// Members of classes, interfaces and namespaces are indexed as well. The
// first declaration wins when a name occurs twice, which happens for the
// interface and const halves of a static object.
//
// **Thread Safety:** Safe for concurrent calls.
func (t *Table) AddLibrary(library string, modules []*ast.Module, globals []*ast.Namespace) int {
	var collected []*Entry
	for _, m := range modules {
		for _, e := range m.Exports {
			collected = append(collected, &Entry{
				FQN:     ast.FQNOf(e.Expression),
				Library: library,
				Module:  m.Name,
				Export:  e.Name,
				Default: e.AsDefault,
				Node:    e.Expression,
			})
			collected = collectMembers(collected, library, m.Name, e.Expression)
		}
	}
	for _, ns := range globals {
		collected = collectMembers(collected, library, "", ns)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.removeLocked(library)
	names := make([]string, 0, len(collected))
	for _, e := range collected {
		if e.FQN == "" {
			continue
		}
		if _, exists := t.entries[e.FQN]; exists {
			continue
		}
		t.entries[e.FQN] = e
		names = append(names, e.FQN)
	}
	t.libraryToNames[library] = names

	t.logger.Debug("indexed library", "library", library, "entries", len(names))
	return len(names)
}

func collectMembers(out []*Entry, library, module string, d ast.Declaration) []*Entry {
	add := func(member ast.Declaration) {
		out = append(out, &Entry{FQN: ast.FQNOf(member), Library: library, Module: module, Node: member})
	}
	switch v := d.(type) {
	case *ast.Namespace:
		for _, member := range v.Members() {
			add(member)
			out = collectMembers(out, library, module, member)
		}
	case *ast.Class:
		for _, p := range v.Props {
			add(p)
		}
		for _, m := range v.Methods {
			add(m)
		}
	case *ast.Interface:
		for _, p := range v.Props {
			add(p)
		}
		for _, m := range v.Methods {
			add(m)
		}
	}
	return out
}

// Lookup returns the declaration named fqn.
//
// **Thread Safety:** Safe for concurrent calls.
func (t *Table) Lookup(fqn string) (*Entry, bool) {
	t.lookups.Add(1)
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[fqn]
	if ok {
		t.hits.Add(1)
	}
	return e, ok
}

// Search returns up to limit entries whose name starts with prefix, sorted by
// name. A limit of zero or less returns all matches.
func (t *Table) Search(prefix string, limit int) []*Entry {
	t.mu.RLock()
	var out []*Entry
	for name, e := range t.entries {
		if strings.HasPrefix(name, prefix) {
			out = append(out, e)
		}
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Entry) int { return strings.Compare(a.FQN, b.FQN) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RemoveLibrary drops every entry of library.
func (t *Table) RemoveLibrary(library string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(library)
}

func (t *Table) removeLocked(library string) {
	for _, name := range t.libraryToNames[library] {
		delete(t.entries, name)
	}
	delete(t.libraryToNames, library)
}

// Libraries returns the indexed library names, sorted.
func (t *Table) Libraries() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.libraryToNames))
	for name := range t.libraryToNames {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Stats returns a snapshot of the table statistics.
func (t *Table) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{
		Libraries: len(t.libraryToNames),
		Entries:   len(t.entries),
		Lookups:   t.lookups.Load(),
		Hits:      t.hits.Load(),
	}
}
