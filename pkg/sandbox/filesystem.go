package sandbox

import (
	"fmt"
	"path/filepath"

	"github.com/orbitsandbox/orbit-agent/pkg/fsutil"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// requiredDirs are created directly under a sandbox root.
var requiredDirs = []string{"fs", "registry", "runtime", "logs"}

// overlayDirs are pre-populated under root/fs to back the virtual
// mounts returned by FsLayer.Snapshot.
var overlayDirs = []string{
	"ProgramFiles",
	"ProgramData",
	filepath.Join("Users", "Default", "AppData", "Local"),
}

// FsLayer owns the filesystem overlay tree for one sandbox root.
type FsLayer struct {
	root string
	fs   fsutil.Filesystem
}

// NewFsLayer constructs a filesystem layer rooted at root.
func NewFsLayer(root string, fs fsutil.Filesystem) FsLayer {
	return FsLayer{root: root, fs: fs}
}

// Prepare creates fs/registry/runtime/logs under root plus the
// pre-populated overlay directories. Idempotent.
func (l FsLayer) Prepare() error {
	for _, dir := range requiredDirs {
		if err := l.fs.MkdirAll(filepath.Join(l.root, dir), 0o755); err != nil {
			return fmt.Errorf("sandbox: create %s: %w", dir, err)
		}
	}
	for _, rel := range overlayDirs {
		if err := l.fs.MkdirAll(filepath.Join(l.root, "fs", rel), 0o755); err != nil {
			return fmt.Errorf("sandbox: create overlay %s: %w", rel, err)
		}
	}
	return nil
}

// Snapshot describes the virtual-to-physical mapping of the overlay layer.
func (l FsLayer) Snapshot() types.FilesystemSnapshot {
	mountRoot := filepath.Join(l.root, "fs")
	return types.FilesystemSnapshot{
		MountRoot: mountRoot,
		Overlays: []types.VirtualMount{
			{VirtualPath: `C:\Program Files`, PhysicalPath: filepath.Join(mountRoot, "ProgramFiles")},
			{VirtualPath: `C:\ProgramData`, PhysicalPath: filepath.Join(mountRoot, "ProgramData")},
			{VirtualPath: `%LOCALAPPDATA%`, PhysicalPath: filepath.Join(mountRoot, "Users", "Default", "AppData", "Local")},
		},
	}
}
