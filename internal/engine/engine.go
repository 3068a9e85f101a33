// Package engine renders views with pongo2. View source is run through the
// directive compiler on its way from disk to the parser and the compiled
// text is kept in the cache directory.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/conneroisu/quill/internal/config"
	"github.com/conneroisu/quill/internal/directive"
	"github.com/conneroisu/quill/internal/logging"
	"github.com/conneroisu/quill/internal/paths"
)

// Options configures an Engine.
type Options struct {
	ViewsPath          string
	CachePath          string
	ComponentPath      string
	ComponentNamespace string
	Namespaces         map[string]string
	Extensions         []string

	// AutoReload re-parses views on every render instead of keeping parsed
	// templates in memory.
	AutoReload bool
	// CacheFileChecks recompiles a cached view when its source is newer.
	CacheFileChecks bool

	Logger logging.Logger
}

// OptionsFromSettings maps resolved settings onto engine options.
func OptionsFromSettings(s *config.Settings, logger logging.Logger) Options {
	return Options{
		ViewsPath:          s.ViewsPath,
		CachePath:          s.CachePath,
		ComponentPath:      s.ComponentPath,
		ComponentNamespace: s.ComponentNamespace,
		Namespaces:         s.Namespaces,
		Extensions:         s.Extensions,
		AutoReload:         s.AutoReload,
		CacheFileChecks:    s.Performance.CacheFileChecks,
		Logger:             logger,
	}
}

// Engine renders directive-enabled pongo2 views.
type Engine struct {
	set        *pongo2.TemplateSet
	finder     *finder
	cache      *compiledCache
	directives *directive.Registry
	logger     logging.Logger

	// generation counts directive set changes.
	generation atomic.Uint64
}

// New creates an engine and makes sure its directories exist.
func New(opts Options) (*Engine, error) {
	if strings.TrimSpace(opts.ViewsPath) == "" {
		return nil, errors.New("engine: views path is required")
	}
	if strings.TrimSpace(opts.CachePath) == "" {
		return nil, errors.New("engine: cache path is required")
	}
	for _, dir := range []string{opts.ViewsPath, opts.CachePath} {
		if err := paths.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.WithComponent("engine")

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = []string{"quill.html", "html"}
	}

	cache, err := newCompiledCache(opts.CachePath, opts.CacheFileChecks)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		finder:     newFinder(opts.ViewsPath, extensions),
		cache:      cache,
		directives: directive.NewRegistry(),
		logger:     logger,
	}
	cache.onStoreError = func(path string, err error) {
		e.logger.Warn(context.Background(), err, "compiled view not cached", "path", path)
	}
	cache.setFingerprint(nil, 0)
	if pruned, err := cache.prune(time.Now().Add(-staleAfter)); err != nil {
		logger.Warn(context.Background(), err, "stale compiled views not pruned", "dir", opts.CachePath)
	} else if pruned > 0 {
		logger.Debug(context.Background(), "stale compiled views pruned", "count", pruned)
	}

	loader := &viewLoader{finder: e.finder, cache: e.cache, compile: e.Compile}
	e.set = pongo2.NewSet("quill", loader)
	e.set.Debug = opts.AutoReload

	if opts.ComponentNamespace != "" && opts.ComponentPath != "" {
		if err := e.AddNamespace(opts.ComponentNamespace, opts.ComponentPath); err != nil {
			return nil, err
		}
	}
	for name, dir := range opts.Namespaces {
		if err := e.AddNamespace(name, dir); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// RegisterDirective adds or replaces a directive. Compiled views are
// dropped so the next render picks the change up.
func (e *Engine) RegisterDirective(name string, fn directive.CompileFunc) error {
	if err := e.directives.RegisterDirective(name, fn); err != nil {
		return err
	}
	return e.directivesChanged()
}

// Install registers the directives of every registry in order, so later
// registries shadow earlier ones, and drops compiled views once.
func (e *Engine) Install(registries ...*directive.Registry) error {
	for _, r := range registries {
		if r == nil {
			continue
		}
		if err := r.InstallInto(e.directives); err != nil {
			return err
		}
	}
	return e.directivesChanged()
}

// directivesChanged moves the compiled cache to a new key space and drops
// the entries compiled with the previous directive set.
func (e *Engine) directivesChanged() error {
	e.cache.setFingerprint(e.directives.Names(), e.generation.Add(1))
	return e.ClearCache()
}

// Directives returns the engine's directive registry.
func (e *Engine) Directives() *directive.Registry {
	return e.directives
}

// Compile runs the registered directives over source.
func (e *Engine) Compile(source string) string {
	return e.directives.CompileSource(source)
}

// Render renders the named view with data.
func (e *Engine) Render(view string, data map[string]any) (string, error) {
	path, err := e.finder.find(view)
	if err != nil {
		return "", err
	}

	tpl, err := e.set.FromCache(path)
	if err != nil {
		return "", fmt.Errorf("parse view %s: %w", view, err)
	}

	out, err := tpl.Execute(toContext(data))
	if err != nil {
		return "", fmt.Errorf("execute view %s: %w", view, err)
	}
	return out, nil
}

// RenderString compiles and renders template source that does not live
// in a file.
func (e *Engine) RenderString(source string, data map[string]any) (string, error) {
	tpl, err := e.set.FromString(e.Compile(source))
	if err != nil {
		return "", fmt.Errorf("parse template string: %w", err)
	}

	out, err := tpl.Execute(toContext(data))
	if err != nil {
		return "", fmt.Errorf("execute template string: %w", err)
	}
	return out, nil
}

// Exists reports whether view resolves to a file.
func (e *Engine) Exists(view string) bool {
	_, err := e.finder.find(view)
	return err == nil
}

// AddNamespace registers dir under name, creating it when missing.
func (e *Engine) AddNamespace(name, dir string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, NamespaceSeparator) {
		return fmt.Errorf("engine: invalid namespace %q", name)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("engine: namespace %s: %w", name, err)
	}
	if err := paths.EnsureDir(abs); err != nil {
		return fmt.Errorf("engine: namespace %s: %w", name, err)
	}

	e.finder.addNamespace(name, abs)
	return nil
}

// Namespaces returns a copy of the namespace directories.
func (e *Engine) Namespaces() map[string]string {
	return e.finder.namespaceDirs()
}

// ViewDirs returns the views directory followed by the namespace
// directories.
func (e *Engine) ViewDirs() []string {
	return e.finder.dirs()
}

// IsView reports whether path has one of the view extensions.
func (e *Engine) IsView(path string) bool {
	return e.finder.isView(path)
}

// ClearCache drops parsed templates and the compiled views this engine
// wrote. Views compiled by other engines sharing the cache directory are
// kept.
func (e *Engine) ClearCache() error {
	e.set.CleanCache()
	removed, err := e.cache.clear()
	if err != nil {
		return err
	}
	if removed > 0 {
		e.logger.Debug(context.Background(), "compiled views cleared", "count", removed)
	}
	return nil
}

// Precompile compiles and parses every view under the view directories
// and returns how many succeeded. Failures are joined into the error.
func (e *Engine) Precompile() (int, error) {
	var (
		count int
		errs  []error
	)
	seen := make(map[string]bool)

	for _, dir := range e.finder.dirs() {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !e.finder.isView(path) || seen[path] {
				return nil
			}
			seen[path] = true

			if _, err := e.set.FromCache(path); err != nil {
				errs = append(errs, fmt.Errorf("precompile %s: %w", path, err))
				return nil
			}
			count++
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return count, errors.Join(errs...)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// toContext converts render data into a pongo2 context. Keys that are not
// identifiers cannot be referenced from a template and are dropped.
func toContext(data map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(data))
	for key, value := range data {
		key = strings.TrimSpace(key)
		if !identifierPattern.MatchString(key) {
			continue
		}
		ctx[key] = value
	}
	return ctx
}
