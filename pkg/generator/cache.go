package generator

import (
	"fmt"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/go-json-experiment/json"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/ui5dts/pkg/apijson"
)

// DefaultCacheSize is the number of fixed dependency documents kept by
// NewDependencyCache when no size is given. The full UI5 distribution has
// fewer libraries.
const DefaultCacheSize = 128

// DependencyCache keeps fixed dependency documents across generation runs.
//
// **Thread Safety:** safe for concurrent use. Get returns a clone, so callers
// may modify what they receive; documents passed to Add are owned by the
// cache and must not be modified afterwards.
type DependencyCache struct {
	docs   *lru.Cache[string, *apijson.Document]
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats describes cache usage.
type CacheStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// NewDependencyCache creates a cache holding up to size documents.
func NewDependencyCache(size int) (*DependencyCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	docs, err := lru.New[string, *apijson.Document](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating dependency cache")
	}
	return &DependencyCache{docs: docs}, nil
}

// CacheKey identifies a document by library and version.
func CacheKey(doc *apijson.Document) string {
	return doc.Library + "@" + doc.Version
}

// DependencyKey identifies the fixed form of doc. Besides library and version
// it covers the document content, the directives, and the keys of the
// dependencies doc is fixed against, so an api.json or .dtsgenrc edit that
// keeps the version still misses the cache.
func DependencyKey(doc *apijson.Document, directives *apijson.Directives, prior []string) (string, error) {
	h := xxhash.New()
	for _, key := range prior {
		_, _ = h.WriteString(key)
		_, _ = h.WriteString("\n")
	}
	data, err := apijson.EncodeDocument(doc)
	if err != nil {
		return "", errors.Wrapf(err, "hashing %s", CacheKey(doc))
	}
	_, _ = h.Write(data)
	if directives != nil {
		data, err = json.Marshal(directives, json.Deterministic(true))
		if err != nil {
			return "", errors.Wrap(err, "hashing directives")
		}
		_, _ = h.Write(data)
	}
	return fmt.Sprintf("%s#%016x", CacheKey(doc), h.Sum64()), nil
}

// Get returns a clone of the cached document for key.
func (c *DependencyCache) Get(key string) (*apijson.Document, bool) {
	doc, ok := c.docs.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return doc.Clone(), true
}

// Add stores doc under key.
func (c *DependencyCache) Add(key string, doc *apijson.Document) {
	c.docs.Add(key, doc)
}

// Remove drops key from the cache.
func (c *DependencyCache) Remove(key string) {
	c.docs.Remove(key)
}

// Clear drops every entry.
func (c *DependencyCache) Clear() {
	c.docs.Purge()
}

// Len returns the number of cached documents.
func (c *DependencyCache) Len() int {
	return c.docs.Len()
}

// Stats returns the current usage counters.
func (c *DependencyCache) Stats() CacheStats {
	return CacheStats{Entries: c.docs.Len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}
