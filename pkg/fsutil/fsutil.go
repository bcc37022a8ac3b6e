// Package fsutil wraps the handful of filesystem operations the
// sandbox provisioning pipeline needs behind a narrow interface, so
// pkg/sandbox can be exercised without touching a real disk.
package fsutil

import "os"

// Filesystem is the subset of os/io operations pkg/sandbox depends on.
type Filesystem interface {
	MkdirAll(path string, perm os.FileMode) error
	WriteFile(path string, data []byte, perm os.FileMode) error
	Stat(path string) (os.FileInfo, error)
	RemoveAll(path string) error
}

// OS is the production Filesystem, backed directly by the os package.
type OS struct{}

func (OS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func (OS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Exists reports whether path is present, treating any stat error other
// than "not exist" as absence rather than propagating it, since callers
// only ever use this to decide whether to (re)write a placeholder file.
func Exists(fs Filesystem, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
