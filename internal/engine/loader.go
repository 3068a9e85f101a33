package engine

import (
	"io"
	"path/filepath"
	"strings"
)

// viewLoader is the pongo2 TemplateLoader behind the engine. It resolves
// view names through the finder and hands pongo2 the directive-compiled
// source from the compiled cache.
type viewLoader struct {
	finder  *finder
	cache   *compiledCache
	compile func(string) string
}

// Abs resolves name to a view file. base is the including template's path
// and is used for includes relative to it.
func (l *viewLoader) Abs(base, name string) string {
	if path, err := l.finder.find(name); err == nil {
		return path
	}
	if filepath.IsAbs(base) && !filepath.IsAbs(name) {
		relative := filepath.Join(filepath.Dir(base), name)
		if isFile(relative) {
			return relative
		}
	}
	return name
}

// Get returns the compiled source of the view at path.
func (l *viewLoader) Get(path string) (io.Reader, error) {
	if !filepath.IsAbs(path) || !isFile(path) {
		resolved, err := l.finder.find(path)
		if err != nil {
			return nil, err
		}
		path = resolved
	}

	text, err := l.cache.load(path, l.compile)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(text), nil
}
