package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) handle(_ context.Context, changed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, changed)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

func startWatcher(t *testing.T, root string, rec *recorder) *Watcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(rec.handle, Options{Debounce: 50 * time.Millisecond, IgnoreDirs: []string{"node_modules"}}, logger)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), root))
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestIsInput(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/x/sap.m/api.json", true},
		{"/x/sap.m.api.json", true},
		{"/x/.dtsgenrc", true},
		{"/x/sap.m.dtsgenrc", true},
		{"/x/sap.m.d.ts", false},
		{"/x/api.json.swp", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInput(tt.path))
		})
	}
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "api.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	rec := &recorder{}
	w := startWatcher(t, root, rec)
	assert.True(t, w.Stats().IsRunning)

	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte(`{"library": "sap.m"}`), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	batches := rec.snapshot()
	require.Len(t, batches, 1, "one batch per burst")
	assert.Equal(t, []string{path}, batches[0])
	assert.Equal(t, int64(1), w.Stats().Runs)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}
	startWatcher(t, root, rec)

	dir := filepath.Join(root, "sap.f")
	require.NoError(t, os.Mkdir(dir, 0o755))
	// Give the watcher a moment to pick up the directory.
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(dir, "api.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	require.Eventually(t, func() bool {
		for _, batch := range rec.snapshot() {
			for _, p := range batch {
				if p == path {
					return true
				}
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoredDirectory(t *testing.T) {
	root := t.TempDir()
	ignored := filepath.Join(root, "node_modules")
	require.NoError(t, os.Mkdir(ignored, 0o755))

	rec := &recorder{}
	startWatcher(t, root, rec)
	require.NoError(t, os.WriteFile(filepath.Join(ignored, "api.json"), []byte("{}"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	rec := &recorder{}
	w := startWatcher(t, t.TempDir(), rec)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.Stats().IsRunning)
	assert.Error(t, w.Start(context.Background(), t.TempDir()))
}

func TestNew_RequiresHandler(t *testing.T) {
	_, err := New(nil, DefaultOptions(), nil)
	assert.Error(t, err)
}
