// FileCache gives read access to api.json and directive files through
// memory-mapped regions.
//
// api.json files of the large UI5 libraries are tens of megabytes; mapping
// them lets repeated generations (watch mode, the MCP server) decode the
// same bytes without re-reading the file. Entries stay mapped until they are
// invalidated or the cache is closed.
//
// **Safety Features:**
//   - Optional MaxFiles and MaxMemoryMB limits
//   - Falls back to os.ReadFile if mmap fails
//   - Thread-safe with sync.RWMutex (parallel reads, exclusive loads)
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
	"github.com/hashicorp/go-multierror"
)

// FileCache provides cached, read-only access to input files.
//
// Thread-safe: Multiple goroutines can call methods concurrently.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(filePath string) (*MappedFile, error)

	// Read returns the file contents. The slice aliases the mapping and must
	// not be modified or retained after Invalidate or Close.
	Read(filePath string) ([]byte, error)

	// Invalidate unmaps a file so the next access reloads it from disk.
	// Used when a watched file changes.
	Invalidate(filePath string) error

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files to keep cached. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB limits the mapped virtual memory. 0 means unlimited.
	MaxMemoryMB int

	// EnableMetrics determines whether to track cache statistics.
	EnableMetrics bool

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns defaults sized for a full UI5 distribution
// (a few hundred libraries, the biggest api.json around 40 MB).
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:      1000,
		MaxMemoryMB:   2048,
		EnableMetrics: true,
	}
}

// UnboundedFileCacheConfig returns config with no limits. Intended for tests.
func UnboundedFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{EnableMetrics: true}
}

// MappedFile is a cached file.
type MappedFile struct {
	Path string

	// Data is the mapped region, or an in-memory copy for fallback entries.
	// Nil for empty files.
	Data mmap.MMap

	// File is kept open for mapped entries; nil for fallback entries.
	File *os.File

	Size     int64
	MappedAt time.Time
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	MmapFailures  int64
	Invalidations int64
	TotalMappedMB float64
}

// NewFileCache creates a new FileCache with the given config.
//
// If config is nil, uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCacheImpl{
		config: config,
		logger: logger,
		files:  make(map[string]*MappedFile),
	}
}

// fileCacheImpl is the internal implementation of FileCache.
//
// mu guards files; statsMu guards stats so metric updates never contend
// with lookups.
type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	files map[string]*MappedFile
	mu    sync.RWMutex

	stats   FileCacheStats
	statsMu sync.Mutex
}

func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	fc.mu.RLock()
	if mf, ok := fc.files[filePath]; ok {
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited for the lock.
	if mf, ok := fc.files[filePath]; ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}
	if err := fc.checkLimitsLocked(stat.Size()); err != nil {
		return nil, err
	}

	mf, err := fc.load(filePath)
	if err != nil {
		return nil, err
	}
	fc.files[filePath] = mf
	fc.record(func(s *FileCacheStats) { s.FilesLoaded++ })
	return mf, nil
}

func (fc *fileCacheImpl) Read(filePath string) ([]byte, error) {
	mf, err := fc.Get(filePath)
	if err != nil {
		return nil, err
	}
	return mf.Data, nil
}

// checkLimitsLocked must be called while holding mu.Lock.
func (fc *fileCacheImpl) checkLimitsLocked(newFileSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.files) >= fc.config.MaxFiles {
		return fmt.Errorf("file cache limit reached: %d files (limit: %d files)",
			len(fc.files), fc.config.MaxFiles)
	}
	if fc.config.MaxMemoryMB > 0 && newFileSize > 0 {
		currentMB := fc.totalMappedMBLocked()
		newMB := float64(newFileSize) / (1024 * 1024)
		if currentMB+newMB >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("file cache memory limit reached: %.2f MB + %.2f MB (limit: %d MB)",
				currentMB, newMB, fc.config.MaxMemoryMB)
		}
	}
	return nil
}

// load maps a file read-only, falling back to os.ReadFile.
func (fc *fileCacheImpl) load(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	// Zero-byte files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return &MappedFile{Path: filePath, MappedAt: time.Now()}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using fallback", "file", filePath, "size", stat.Size(), "error", err)
		file.Close()
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })

		raw, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				filePath, err, readErr)
		}
		return &MappedFile{Path: filePath, Data: mmap.MMap(raw), Size: int64(len(raw)), MappedAt: time.Now()}, nil
	}

	return &MappedFile{Path: filePath, Data: data, File: file, Size: stat.Size(), MappedAt: time.Now()}, nil
}

func (fc *fileCacheImpl) Invalidate(filePath string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.files[filePath]
	if !ok {
		return nil
	}
	delete(fc.files, filePath)
	fc.record(func(s *FileCacheStats) { s.Invalidations++ })
	return release(mf)
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.files)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.files)
	mapped := fc.totalMappedMBLocked()
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	stats := fc.stats
	stats.FilesCached = cached
	stats.TotalMappedMB = mapped
	return stats
}

// totalMappedMBLocked must be called while holding mu.
func (fc *fileCacheImpl) totalMappedMBLocked() float64 {
	var total int64
	for _, mf := range fc.files {
		total += mf.Size
	}
	return float64(total) / (1024 * 1024)
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var result *multierror.Error
	for path, mf := range fc.files {
		if err := release(mf); err != nil {
			fc.logger.Warn("failed to release file", "path", path, "error", err)
			result = multierror.Append(result, err)
		}
	}
	fc.files = make(map[string]*MappedFile)

	fc.logger.Debug("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"cache_misses", fc.stats.CacheMisses,
		"mmap_failures", fc.stats.MmapFailures)

	return result.ErrorOrNil()
}

// release unmaps a mapped entry and closes its descriptor.
func release(mf *MappedFile) error {
	if mf.File == nil {
		return nil
	}
	var result *multierror.Error
	if mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			result = multierror.Append(result, fmt.Errorf("unmap %q: %w", mf.Path, err))
		}
	}
	if err := mf.File.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close %q: %w", mf.Path, err))
	}
	return result.ErrorOrNil()
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	if !fc.config.EnableMetrics {
		return
	}
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}
