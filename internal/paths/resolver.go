// Package paths resolves the directories quill works with. Candidates are
// probed in order, created when missing, optionally checked for write
// access, and a deterministic per-project directory under the system temp
// root is used when every candidate fails.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	quillerrors "github.com/conneroisu/quill/internal/errors"
)

// DirPerm is the permission used for every directory quill creates.
const DirPerm os.FileMode = 0o755

// Resolver probes candidate directories relative to a project root.
type Resolver struct {
	projectRoot string
	tempRoot    string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTempRoot overrides the system temp root used for the fallback
// directory.
func WithTempRoot(dir string) Option {
	return func(r *Resolver) {
		if strings.TrimSpace(dir) != "" {
			r.tempRoot = dir
		}
	}
}

// NewResolver creates a resolver for the given project root.
func NewResolver(projectRoot string, opts ...Option) *Resolver {
	r := &Resolver{
		projectRoot: filepath.Clean(projectRoot),
		tempRoot:    os.TempDir(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ProjectRoot returns the root relative candidates are joined to.
func (r *Resolver) ProjectRoot() string {
	return r.projectRoot
}

// Resolve returns the first candidate that exists or can be created and,
// when requireWritable is set, is writable. When none qualifies the
// project's fallback directory is used.
func (r *Resolver) Resolve(candidates []string, requireWritable bool) (string, error) {
	return r.ResolveIn("", candidates, requireWritable)
}

// ResolveIn is Resolve with a named sub-directory of the fallback
// directory, so views and cache never share a fallback location.
func (r *Resolver) ResolveIn(sub string, candidates []string, requireWritable bool) (string, error) {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		path := r.Abs(candidate)
		if err := EnsureDir(path); err != nil {
			continue
		}
		if requireWritable && !IsWritable(path) {
			continue
		}
		return path, nil
	}

	fallback := FallbackDir(r.tempRoot, r.projectRoot, sub)
	if err := EnsureDir(fallback); err != nil {
		return "", quillerrors.NewPathResolutionError(
			fmt.Sprintf("no usable directory among %d candidates", len(candidates)),
			err,
		).WithPath(fallback)
	}
	if requireWritable && !IsWritable(fallback) {
		return "", quillerrors.NewPathResolutionError(
			"fallback directory is not writable",
			nil,
		).WithPath(fallback)
	}
	return fallback, nil
}

// Abs makes path absolute against the project root.
func (r *Resolver) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.projectRoot, path)
}

// EnsureDir creates path and its parents when missing. Existing
// directories are left untouched; an existing non-directory is an error.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(path, DirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// FallbackDir builds <tempRoot>/quill-<hash(projectRoot)>[/sub]. The hash
// is stable for a given root so every process of a project shares it.
func FallbackDir(tempRoot, projectRoot, sub string) string {
	sum := xxhash.Sum64String(filepath.Clean(projectRoot))
	dir := filepath.Join(tempRoot, "quill-"+strconv.FormatUint(sum, 16))
	if sub != "" {
		dir = filepath.Join(dir, sub)
	}
	return dir
}
