package engine

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// compiledExt marks files the compiled cache owns.
const compiledExt = ".compiled"

// staleAfter is how long compiled views left behind by other engines are
// kept before a new engine prunes them.
const staleAfter = 24 * time.Hour

// compiledCache keeps directive-compiled view source on disk. Every engine
// owns its entries: file names are
//
//	<owner>-<xxhash(fingerprint, source path)>.compiled
//
// where owner is random per engine and fingerprint changes whenever the
// directive set does, so engines sharing a directory never read each
// other's output.
type compiledCache struct {
	dir        string
	checkMtime bool
	owner      string

	mu          sync.RWMutex
	fingerprint string

	// onStoreError is told about compiled views that could not be written.
	onStoreError func(path string, err error)
}

func newCompiledCache(dir string, checkMtime bool) (*compiledCache, error) {
	owner, err := newOwnerID()
	if err != nil {
		return nil, err
	}
	return &compiledCache{dir: dir, checkMtime: checkMtime, owner: owner}, nil
}

func newOwnerID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate cache owner: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// setFingerprint keys subsequent entries by the directive set described by
// names and generation.
func (c *compiledCache) setFingerprint(names []string, generation uint64) {
	h := xxhash.New()
	for _, name := range names {
		_, _ = h.WriteString(name)
		_, _ = h.WriteString("\x00")
	}
	_, _ = h.WriteString(strconv.FormatUint(generation, 10))

	c.mu.Lock()
	c.fingerprint = strconv.FormatUint(h.Sum64(), 16)
	c.mu.Unlock()
}

func (c *compiledCache) pathFor(source string) string {
	c.mu.RLock()
	fingerprint := c.fingerprint
	c.mu.RUnlock()

	key := xxhash.Sum64String(fingerprint + "\x00" + source)
	return filepath.Join(c.dir, c.owner+"-"+strconv.FormatUint(key, 16)+compiledExt)
}

func (c *compiledCache) owns(name string) bool {
	return strings.HasPrefix(name, c.owner+"-") && strings.HasSuffix(name, compiledExt)
}

// fresh reports whether the compiled copy of source can be used. With
// modification checks disabled any existing copy is fresh.
func (c *compiledCache) fresh(source, compiled string) bool {
	compiledInfo, err := os.Stat(compiled)
	if err != nil {
		return false
	}
	if !c.checkMtime {
		return true
	}
	sourceInfo, err := os.Stat(source)
	if err != nil {
		return false
	}
	return !sourceInfo.ModTime().After(compiledInfo.ModTime())
}

// load returns the compiled form of the view at source, compiling and
// storing it when the cached copy is missing or stale. A failed store does
// not fail the load.
func (c *compiledCache) load(source string, compile func(string) string) (string, error) {
	target := c.pathFor(source)
	if c.fresh(source, target) {
		if raw, err := os.ReadFile(target); err == nil {
			return string(raw), nil
		}
	}

	raw, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read view %s: %w", source, err)
	}
	text := compile(string(raw))
	if err := c.store(target, text); err != nil && c.onStoreError != nil {
		c.onStoreError(source, err)
	}
	return text, nil
}

// store writes through a temporary file so readers never see a partial
// compile.
func (c *compiledCache) store(target, text string) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create compiled view: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("write compiled view: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close compiled view: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("store compiled view: %w", err)
	}
	return nil
}

// clear removes this cache's compiled views and returns how many were
// removed. Entries of other engines are left alone.
func (c *compiledCache) clear() (int, error) {
	return c.remove(func(entry os.DirEntry) bool {
		return c.owns(entry.Name())
	})
}

// prune removes compiled views of other engines last written before
// cutoff.
func (c *compiledCache) prune(cutoff time.Time) (int, error) {
	return c.remove(func(entry os.DirEntry) bool {
		name := entry.Name()
		if !strings.HasSuffix(name, compiledExt) || c.owns(name) {
			return false
		}
		info, err := entry.Info()
		return err == nil && info.ModTime().Before(cutoff)
	})
}

func (c *compiledCache) remove(match func(os.DirEntry) bool) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !match(entry) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove compiled view: %w", err)
		}
		removed++
	}
	return removed, nil
}
