package apijson

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/gnana997/ui5dts/pkg/util"
)

// ErrInvalidDocument is returned for api.json files that are not usable.
var ErrInvalidDocument = errors.New("invalid api.json document")

// decodeOptions tolerate quirks of files produced by older JSDoc tooling.
var decodeOptions = json.JoinOptions(
	jsontext.AllowDuplicateNames(true),
	jsontext.AllowInvalidUTF8(true),
)

// DecodeDocument decodes an api.json document.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc, decodeOptions); err != nil {
		return nil, errors.Wrap(errors.Mark(err, ErrInvalidDocument), "decoding api.json")
	}
	if doc.Library == "" {
		return nil, errors.WithHint(
			errors.Wrap(ErrInvalidDocument, "missing \"library\" member"),
			"api.json files are produced by the UI5 JSDoc build; make sure the file is not a fragment")
	}
	for i, sym := range doc.Symbols {
		if sym == nil || sym.Name == "" || sym.Kind == "" {
			return nil, errors.Wrapf(ErrInvalidDocument, "symbol #%d in %s has no name or kind", i, doc.Library)
		}
	}
	return &doc, nil
}

// EncodeDocument encodes a document deterministically, indented with two
// spaces.
func EncodeDocument(doc *Document) ([]byte, error) {
	return json.Marshal(doc, json.Deterministic(true), jsontext.WithIndent("  "))
}

// DecodeDirectives decodes a .dtsgenrc file. Empty input yields empty
// directives.
func DecodeDirectives(data []byte) (*Directives, error) {
	var d Directives
	if len(data) == 0 {
		return &d, nil
	}
	if err := json.Unmarshal(data, &d, decodeOptions); err != nil {
		return nil, errors.Wrap(err, "decoding directives")
	}
	return &d, nil
}

// Loader reads api.json and directive files through a FileCache.
//
// **Thread Safety:** safe for concurrent use; the FileCache synchronizes access.
type Loader struct {
	cache  util.FileCache
	logger *slog.Logger
}

// NewLoader creates a loader. A nil cache gets an unbounded private cache.
func NewLoader(cache util.FileCache, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cfg := util.UnboundedFileCacheConfig()
		cfg.Logger = logger
		cache = util.NewFileCache(cfg)
	}
	return &Loader{cache: cache, logger: logger}
}

// LoadDocument reads and decodes one api.json file.
func (l *Loader) LoadDocument(path string) (*Document, error) {
	data, err := l.cache.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	l.logger.Debug("loaded api.json", "path", path, "library", doc.Library, "symbols", len(doc.Symbols))
	return doc, nil
}

// LoadDirectives reads every file and merges them in order.
func (l *Loader) LoadDirectives(paths ...string) (*Directives, error) {
	all := make([]*Directives, 0, len(paths))
	for _, path := range paths {
		data, err := l.cache.Read(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		d, err := DecodeDirectives(data)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
		all = append(all, d)
	}
	return MergeDirectives(all...), nil
}

// Invalidate drops a cached file so the next load re-reads it.
func (l *Loader) Invalidate(path string) error {
	return l.cache.Invalidate(path)
}

// Close releases the underlying cache.
func (l *Loader) Close() error {
	return l.cache.Close()
}
