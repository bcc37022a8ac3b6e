package sandbox

import (
	"fmt"
	"path/filepath"

	"github.com/orbitsandbox/orbit-agent/pkg/fsutil"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

var placeholderHives = []string{"SOFTWARE.reg", "SYSTEM.reg", "NTUSER.dat"}

const placeholderHiveContent = "; orbit placeholder hive\n"

// RegistryLayer owns the placeholder registry hive files for one sandbox root.
type RegistryLayer struct {
	root string
	fs   fsutil.Filesystem
}

// NewRegistryLayer constructs a registry layer rooted at root.
func NewRegistryLayer(root string, fs fsutil.Filesystem) RegistryLayer {
	return RegistryLayer{root: root, fs: fs}
}

// Prepare creates the registry directory and writes each placeholder
// hive file only if it is not already present, so re-running never
// clobbers a hive a later virtualization backend has started to use.
func (l RegistryLayer) Prepare() error {
	hiveDir := filepath.Join(l.root, "registry")
	if err := l.fs.MkdirAll(hiveDir, 0o755); err != nil {
		return fmt.Errorf("sandbox: create registry dir: %w", err)
	}
	for _, hive := range placeholderHives {
		path := filepath.Join(hiveDir, hive)
		if fsutil.Exists(l.fs, path) {
			continue
		}
		if err := l.fs.WriteFile(path, []byte(placeholderHiveContent), 0o644); err != nil {
			return fmt.Errorf("sandbox: write hive %s: %w", hive, err)
		}
	}
	return nil
}

// Snapshot returns the absolute paths of the three hive files.
func (l RegistryLayer) Snapshot() types.RegistrySnapshot {
	base := filepath.Join(l.root, "registry")
	return types.RegistrySnapshot{
		Software: filepath.Join(base, "SOFTWARE.reg"),
		System:   filepath.Join(base, "SYSTEM.reg"),
		NTUser:   filepath.Join(base, "NTUSER.dat"),
	}
}
