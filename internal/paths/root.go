package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultRootMarkers are the entries whose presence marks a project root.
var DefaultRootMarkers = []string{"go.mod"}

// MaxRootDepth bounds how many parent directories FindProjectRoot visits.
const MaxRootDepth = 10

// FindProjectRoot walks up from start until a directory containing one of
// markers is found.
func FindProjectRoot(start string, markers []string) (string, error) {
	if len(markers) == 0 {
		markers = DefaultRootMarkers
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for i := 0; i < MaxRootDepth; i++ {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no project root marker %v found above %s", markers, start)
}
