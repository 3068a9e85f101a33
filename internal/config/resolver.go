// Package config resolves quill's layered configuration.
//
// A load merges, lowest precedence first: built-in defaults, the first
// configuration file found under the project root, the override block of
// the active environment, and caller overrides. A caller override of
// "environment" selects the active environment. Nested mappings merge
// key-wise. Afterwards the directory keys are made absolute and, in the
// permissive profile, discovered and created when unset.
//
// The resolved Snapshot is cached until Reset is called or Load receives
// non-empty overrides, in which case it is recomputed and replaces the
// cached value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	quillerrors "github.com/conneroisu/quill/internal/errors"
	"github.com/conneroisu/quill/internal/paths"
)

// Conventional directory candidates relative to the project root.
var (
	ViewCandidates  = []string{"views", "resources/views", "templates", "app/Views"}
	CacheCandidates = []string{"storage/cache/views", "cache/views", ".quill/cache"}
)

// Options configures a Resolver.
type Options struct {
	// ProjectRoot skips root discovery when set.
	ProjectRoot string
	// WorkDir is where root discovery starts; defaults to the working
	// directory.
	WorkDir string
	// RootMarkers overrides paths.DefaultRootMarkers.
	RootMarkers []string
	// ConfigFile is used instead of FileCandidates when set.
	ConfigFile string
	// Strict selects the fail-fast profile: a configuration file and both
	// viewsPath and cachePath are required and nothing is discovered.
	Strict bool
	// Env is consulted before the process environment.
	Env map[string]string
	// TempRoot overrides the system temp root for fallback directories.
	TempRoot string
}

// Resolver loads and caches configuration snapshots.
type Resolver struct {
	opts Options
	env  *Environment

	mu         sync.Mutex
	cached     *Snapshot
	root       string
	configFile string
}

// NewResolver creates a resolver.
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		opts: opts,
		env:  NewEnvironment(opts.Env),
	}
}

// Environment returns the environment resolver.
func (r *Resolver) Environment() *Environment {
	return r.env
}

// Strict reports whether the strict profile is active.
func (r *Resolver) Strict() bool {
	return r.opts.Strict
}

// Load returns the cached snapshot when overrides is empty, and computes
// and caches a new one otherwise.
func (r *Resolver) Load(overrides map[string]any) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil && len(overrides) == 0 {
		return r.cached, nil
	}

	snap, err := r.load(overrides)
	if err != nil {
		return nil, err
	}
	r.cached = snap
	return snap, nil
}

// Get loads the configuration if needed and returns the value at dotPath,
// or def. Load errors yield def.
func (r *Resolver) Get(dotPath string, def any) any {
	snap, err := r.Load(nil)
	if err != nil {
		return def
	}
	return snap.Get(dotPath, def)
}

// Reset drops the cached snapshot and project root.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cached = nil
	r.root = ""
	r.configFile = ""
}

// ConfigFile returns the file used by the last load, or "".
func (r *Resolver) ConfigFile() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configFile
}

// ProjectRoot returns the memoized project root, discovering it if needed.
func (r *Resolver) ProjectRoot() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projectRoot()
}

func (r *Resolver) projectRoot() (string, error) {
	if r.root != "" {
		return r.root, nil
	}
	if r.opts.ProjectRoot != "" {
		root, err := filepath.Abs(r.opts.ProjectRoot)
		if err != nil {
			return "", quillerrors.NewConfigError(quillerrors.ErrCodeProjectRoot, "invalid project root", err)
		}
		r.root = root
		return root, nil
	}

	start := r.opts.WorkDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", quillerrors.NewConfigError(quillerrors.ErrCodeProjectRoot, "cannot determine working directory", err)
		}
		start = wd
	}

	root, err := paths.FindProjectRoot(start, r.opts.RootMarkers)
	if err != nil {
		if r.opts.Strict {
			return "", quillerrors.NewConfigError(quillerrors.ErrCodeProjectRoot, "could not find the project root", err)
		}
		if root, err = filepath.Abs(start); err != nil {
			return "", quillerrors.NewConfigError(quillerrors.ErrCodeProjectRoot, "invalid working directory", err)
		}
	}
	r.root = root
	return root, nil
}

func (r *Resolver) load(overrides map[string]any) (*Snapshot, error) {
	root, err := r.projectRoot()
	if err != nil {
		return nil, err
	}

	merged := Defaults()

	file, err := r.locateFile(root)
	if err != nil {
		return nil, err
	}
	if file != "" {
		fileConfig, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, fileConfig)
	}
	r.configFile = file

	environment := r.env.Current()
	if name := stringValue(overrides["environment"]); name != "" {
		environment = strings.ToLower(name)
	}

	snap := ApplyEnvironment(NewSnapshot(merged), environment)
	if len(overrides) > 0 {
		snap = snap.With(overrides)
	}
	snap = snap.With(map[string]any{"environment": environment})

	snap, err = r.resolvePaths(snap, root)
	if err != nil {
		return nil, err
	}

	settings, err := Decode(snap)
	if err != nil {
		return nil, quillerrors.NewConfigError(quillerrors.ErrCodeConfigInvalid, "invalid configuration", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, quillerrors.NewConfigError(quillerrors.ErrCodeConfigInvalid, "invalid configuration", err)
	}

	return snap, nil
}

func (r *Resolver) locateFile(root string) (string, error) {
	if r.opts.ConfigFile != "" {
		path := r.opts.ConfigFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", quillerrors.NewConfigError(
				quillerrors.ErrCodeConfigFile,
				"configuration file not found",
				err,
			).WithPath(path)
		}
		return path, nil
	}

	file := FindFile(root, FileCandidates)
	if file == "" && r.opts.Strict {
		return "", quillerrors.NewConfigError(
			quillerrors.ErrCodeConfigFile,
			fmt.Sprintf("configuration file not found in %s", root),
			nil,
		).WithContext("candidates", FileCandidates)
	}
	return file, nil
}

// resolvePaths fills and normalizes every directory-valued key.
func (r *Resolver) resolvePaths(snap *Snapshot, root string) (*Snapshot, error) {
	resolver := paths.NewResolver(root, paths.WithTempRoot(r.opts.TempRoot))

	viewsPath, err := r.resolveDir(resolver, snap, "viewsPath", "views", ViewCandidates, false)
	if err != nil {
		return nil, err
	}
	cachePath, err := r.resolveDir(resolver, snap, "cachePath", "cache", CacheCandidates, true)
	if err != nil {
		return nil, err
	}

	componentPath := stringValue(snap.Get("componentPath", nil))
	if componentPath == "" {
		componentPath = filepath.Join(viewsPath, "components")
	}
	componentPath = resolver.Abs(componentPath)
	// A missing component directory only disables the namespace.
	_ = paths.EnsureDir(componentPath)

	namespaces := map[string]any{}
	for name, value := range snap.Map("namespaces") {
		path := stringValue(value)
		if path == "" {
			path = filepath.Join(viewsPath, name)
		}
		namespaces[name] = resolver.Abs(path)
	}

	langPath := stringValue(snap.Get("langPath", nil))
	if langPath == "" {
		langPath = "lang"
	}

	return snap.With(map[string]any{
		"viewsPath":     viewsPath,
		"cachePath":     cachePath,
		"componentPath": componentPath,
		"namespaces":    namespaces,
		"langPath":      resolver.Abs(langPath),
	}), nil
}

func (r *Resolver) resolveDir(resolver *paths.Resolver, snap *Snapshot, key, sub string, candidates []string, writable bool) (string, error) {
	raw := snap.Get(key, nil)
	configured, isString := raw.(string)
	configured = strings.TrimSpace(configured)

	if r.opts.Strict {
		if !isString || configured == "" {
			return "", quillerrors.ErrRequiredPath(key)
		}
		path := resolver.Abs(configured)
		if err := paths.EnsureDir(path); err != nil {
			return "", quillerrors.NewConfigError(
				quillerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("cannot create %s directory", key),
				err,
			).WithPath(path)
		}
		if writable && !paths.IsWritable(path) {
			return "", quillerrors.NewConfigError(
				quillerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("%s is not writable", key),
				nil,
			).WithPath(path)
		}
		return path, nil
	}

	list := candidates
	if configured != "" {
		list = append([]string{configured}, candidates...)
	}
	return resolver.ResolveIn(sub, list, writable)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// Settings loads the configuration if needed and decodes it.
func (r *Resolver) Settings() (*Settings, error) {
	snap, err := r.Load(nil)
	if err != nil {
		return nil, err
	}
	return Decode(snap)
}
