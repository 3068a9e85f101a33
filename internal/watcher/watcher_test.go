package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(9), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(0, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Equal(t, DefaultDelay, watcher.debouncer.delay)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestAddPath(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	dir := t.TempDir()
	require.NoError(t, watcher.AddPath(dir))
	assert.Contains(t, watcher.WatchedPaths(), dir)

	assert.Error(t, watcher.AddPath(filepath.Join(dir, "missing")))
	assert.Error(t, watcher.AddPath(" "))
}

func TestAddRecursiveSkipsHiddenDirs(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages", "admin"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	require.NoError(t, watcher.AddRecursive(root))

	watched := watcher.WatchedPaths()
	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "pages"),
		filepath.Join(root, "pages", "admin"),
	}, watched)

	assert.Error(t, watcher.AddRecursive(filepath.Join(root, "missing")))
}

func TestStartDeliversFilteredEvents(t *testing.T) {
	watcher, err := NewFileWatcher(30*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	dir := t.TempDir()
	require.NoError(t, watcher.AddRecursive(dir))
	watcher.AddFilter(ExtensionFilter("html"))

	var mu sync.Mutex
	var seen []string
	watcher.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		for _, event := range events {
			seen = append(seen, filepath.Base(event.Path))
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, seen, "notes.txt")
	assert.Contains(t, seen, "page.html")
}

func TestStopTwice(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}

func TestDebouncerCoalescesByPath(t *testing.T) {
	debouncer := newDebouncer(time.Hour)
	defer debouncer.stop()

	debouncer.addEvent(ChangeEvent{Path: "a.html", Type: EventTypeCreated})
	debouncer.addEvent(ChangeEvent{Path: "b.html", Type: EventTypeModified})
	debouncer.addEvent(ChangeEvent{Path: "a.html", Type: EventTypeDeleted})
	debouncer.flush()

	select {
	case events := <-debouncer.output:
		require.Len(t, events, 2)
		assert.Equal(t, "a.html", events[0].Path)
		assert.Equal(t, EventTypeDeleted, events[0].Type)
		assert.Equal(t, "b.html", events[1].Path)
	default:
		t.Fatal("expected a batch")
	}

	debouncer.flush()
	assert.Empty(t, debouncer.output)
}

func TestFilters(t *testing.T) {
	views := ExtensionFilter("quill.html", ".html")
	config := PathFilter("/app/quill.json", "")
	either := AnyFilter(views, config)

	testCases := []struct {
		path   string
		views  bool
		config bool
		hidden bool
	}{
		{"/app/views/home.html", true, false, false},
		{"/app/views/home.quill.html", true, false, false},
		{"/app/views/home.htm", false, false, false},
		{"/app/quill.json", false, true, false},
		{"/app/./quill.json", false, true, false},
		{"/app/views/.home.html.swp", false, false, true},
		{"/app/views/.hidden.html", true, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.views, views(tc.path))
			assert.Equal(t, tc.config, config(tc.path))
			assert.Equal(t, tc.views || tc.config, either(tc.path))
			assert.Equal(t, !tc.hidden, NoHiddenFilter(tc.path))
		})
	}
}
