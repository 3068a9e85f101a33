//go:build !unix

package paths

import "os"

// IsWritable reports whether the current process may write to path by
// creating and removing a probe file.
func IsWritable(path string) bool {
	f, err := os.CreateTemp(path, ".quill-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
