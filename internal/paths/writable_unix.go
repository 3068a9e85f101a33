//go:build unix

package paths

import "golang.org/x/sys/unix"

// IsWritable reports whether the current process may write to path.
func IsWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
