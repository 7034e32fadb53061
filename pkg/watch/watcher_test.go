package watch

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/probe/pkg/config"
)

func newTestWatcher(t *testing.T, dir string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, config.DefaultConfig(), debounce)
	require.NoError(t, err)
	w.SetOutput(io.Discard)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default debounce", 0, DefaultDebounce},
		{"custom debounce", time.Second, time.Second},
		{"negative debounce defaults", -time.Second, DefaultDebounce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWatcher(t, tmpDir, tt.debounce)
			assert.Equal(t, tt.want, w.debounce)
			assert.Equal(t, tmpDir, w.path)
			assert.NotNil(t, w.pending)
			assert.NotNil(t, w.config)
		})
	}
}

func TestNewWatcher_NilConfig(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil, 0)
	require.NoError(t, err)
	defer w.Stop()
	assert.NotNil(t, w.config)
}

func TestWatcher_handleEvent(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	tests := []struct {
		name    string
		file    string
		op      fsnotify.Op
		pending bool
	}{
		{"write python", "cart.py", fsnotify.Write, true},
		{"create java", "Query.java", fsnotify.Create, true},
		{"write typescript", "clock.ts", fsnotify.Write, true},
		{"write javascript", "dates.js", fsnotify.Write, true},
		{"remove ignored", "gone.py", fsnotify.Remove, false},
		{"chmod ignored", "mode.py", fsnotify.Chmod, false},
		{"unsupported language", "main.go", fsnotify.Write, false},
		{"generated test excluded", "test_cart.py", fsnotify.Write, false},
		{"spec excluded", "clock.spec.ts", fsnotify.Write, false},
		{"node_modules excluded", filepath.Join("node_modules", "lib.js"), fsnotify.Write, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			w.handleEvent(fsnotify.Event{Name: path, Op: tt.op})

			w.mu.Lock()
			_, ok := w.pending[path]
			w.mu.Unlock()
			if ok != tt.pending {
				t.Errorf("pending[%s] = %v, want %v", tt.file, ok, tt.pending)
			}
		})
	}
}

func TestWatcher_processPending(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	got := make(chan string, 1)
	w.SetCallback(func(_ context.Context, path string) {
		got <- path
	})

	ready := filepath.Join(tmpDir, "ready.py")
	fresh := filepath.Join(tmpDir, "fresh.py")
	w.mu.Lock()
	w.pending[ready] = time.Now().Add(-100 * time.Millisecond)
	w.pending[fresh] = time.Now()
	w.mu.Unlock()

	w.processPending(context.Background())

	select {
	case path := <-got:
		assert.Equal(t, ready, path)
	case <-time.After(time.Second):
		t.Fatal("callback was not called")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.NotContains(t, w.pending, ready)
	assert.Contains(t, w.pending, fresh, "files inside the debounce window stay pending")
}

func TestWatcher_processPending_NoCallback(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 10*time.Millisecond)

	path := filepath.Join(tmpDir, "cart.py")
	w.mu.Lock()
	w.pending[path] = time.Now().Add(-time.Second)
	w.mu.Unlock()

	w.processPending(context.Background())

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.pending)
}

func TestWatcher_Start_Context(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Error("Start() did not return after context cancellation")
	}
}

func TestWatcher_Start_FileChange(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	var out bytes.Buffer
	var outMu sync.Mutex
	w.SetOutput(writerFunc(func(p []byte) (int, error) {
		outMu.Lock()
		defer outMu.Unlock()
		return out.Write(p)
	}))

	var calls int32
	got := make(chan string, 4)
	w.SetCallback(func(_ context.Context, path string) {
		atomic.AddInt32(&calls, 1)
		got <- path
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tmpDir, "cart.py")
	require.NoError(t, os.WriteFile(testFile, []byte("def add(a, b):\n    return a + b\n"), 0o644))

	select {
	case path := <-got:
		assert.Equal(t, testFile, path)
	case <-time.After(2 * time.Second):
		t.Fatal("callback should be called when a file is created")
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))

	outMu.Lock()
	defer outMu.Unlock()
	assert.Contains(t, out.String(), "File changed: cart.py")
}

func TestWatcher_Start_ExcludedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "src"), 0o755))

	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.Eventually(t, func() bool {
		return len(w.WatchedDirs()) >= 2
	}, time.Second, 10*time.Millisecond)

	for _, path := range w.WatchedDirs() {
		assert.NotContains(t, path, "node_modules")
	}
}

func TestWatcher_Debounce(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 200*time.Millisecond)

	var calls int32
	w.SetCallback(func(context.Context, string) {
		atomic.AddInt32(&calls, 1)
	})

	path := filepath.Join(tmpDir, "cart.py")
	for i := 0; i < 5; i++ {
		w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})
		w.processPending(context.Background())
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "rapid writes stay inside the debounce window")

	w.mu.Lock()
	assert.Len(t, w.pending, 1)
	w.mu.Unlock()
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
