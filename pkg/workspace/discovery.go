package workspace

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
)

// Default discovery patterns, relative to the workspace root.
var (
	DefaultDocumentPatterns  = []string{"**/api.json", "**/*.api.json"}
	DefaultDirectivePatterns = []string{"**/.dtsgenrc", "**/*.dtsgenrc"}
	DefaultExclude           = []string{"**/node_modules/**", "**/.git/**"}
)

// DiscoverFiles walks rootDir and returns the files matching one of include
// and none of exclude, as sorted absolute paths. An excluded directory is not
// descended into.
func DiscoverFiles(rootDir string, include, exclude []string) ([]string, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf("invalid include pattern: %s", pattern)
		}
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving workspace root")
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if matchAny(exclude, relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matchAny(include, relPath) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", absRoot)
	}

	sort.Strings(files)
	return files, nil
}

func matchAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if m, _ := doublestar.Match(pattern, relPath); m {
			return true
		}
	}
	return false
}
