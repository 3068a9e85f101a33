package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// NamespaceSeparator splits a namespaced view name, as in "admin::users.index".
const NamespaceSeparator = "::"

// finder maps view names to files. Dots in a name are directory
// separators and every configured extension is tried in order.
type finder struct {
	mu         sync.RWMutex
	root       string
	namespaces map[string]string
	extensions []string
}

func newFinder(root string, extensions []string) *finder {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return &finder{
		root:       root,
		namespaces: make(map[string]string),
		extensions: exts,
	}
}

func (f *finder) addNamespace(name, dir string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.namespaces[name] = dir
}

func (f *finder) namespaceDirs() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]string, len(f.namespaces))
	for name, dir := range f.namespaces {
		out[name] = dir
	}
	return out
}

// dirs returns the views root followed by the namespace directories in
// name order.
func (f *finder) dirs() []string {
	namespaces := f.namespaceDirs()
	names := make([]string, 0, len(namespaces))
	for name := range namespaces {
		names = append(names, name)
	}
	sort.Strings(names)

	dirs := []string{f.root}
	for _, name := range names {
		dirs = append(dirs, namespaces[name])
	}
	return dirs
}

// find resolves a view name to an existing file.
func (f *finder) find(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty view name")
	}
	if filepath.IsAbs(name) {
		if isFile(name) {
			return filepath.Clean(name), nil
		}
		return "", fmt.Errorf("view [%s] not found", name)
	}

	dir := f.root
	rest := name
	if ns, view, ok := strings.Cut(name, NamespaceSeparator); ok {
		f.mu.RLock()
		nsDir, known := f.namespaces[ns]
		f.mu.RUnlock()
		if !known {
			return "", fmt.Errorf("no hint path defined for [%s]", ns)
		}
		dir = nsDir
		rest = view
	}

	for _, candidate := range f.candidates(rest) {
		path := filepath.Join(dir, candidate)
		if !within(dir, path) {
			return "", fmt.Errorf("view [%s] escapes its directory", name)
		}
		if isFile(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("view [%s] not found", name)
}

// candidates lists the relative file names a view name may refer to.
func (f *finder) candidates(view string) []string {
	var out []string
	for _, ext := range f.extensions {
		if strings.HasSuffix(view, "."+ext) {
			out = append(out, view)
			break
		}
	}

	slashed := strings.ReplaceAll(view, ".", string(filepath.Separator))
	for _, ext := range f.extensions {
		out = append(out, slashed+"."+ext)
	}
	return out
}

// isView reports whether path carries one of the view extensions.
func (f *finder) isView(path string) bool {
	base := filepath.Base(path)
	for _, ext := range f.extensions {
		if strings.HasSuffix(base, "."+ext) {
			return true
		}
	}
	return false
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
