package sandbox

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/fsutil"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// sanitizeReplacer replaces characters that are illegal in Windows path
// segments with "_", so a container name can be used directly as a directory name.
var sanitizeReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// Sanitize replaces each of / \ : " < > | in name with "_". All other
// characters pass through unchanged.
func Sanitize(name string) string {
	return sanitizeReplacer.Replace(name)
}

// Descriptor identifies one sandbox: the container it belongs to, the
// target platform, and the root directory its tree is rooted at.
type Descriptor struct {
	ContainerID string
	Name        string
	Platform    types.Platform
	Root        string
}

// Runtime owns the three provisioning layers for one sandbox and
// composes their output into a SandboxManifest.
type Runtime struct {
	descriptor Descriptor
	fs         FsLayer
	registry   RegistryLayer
	runtimeEnv RuntimeEnvLayer
	filesystem fsutil.Filesystem
	clock      clock.Clock
}

// NewRuntime constructs a Runtime for descriptor, backed by the given
// filesystem implementation (fsutil.OS{} in production).
func NewRuntime(descriptor Descriptor, filesystem fsutil.Filesystem) Runtime {
	return Runtime{
		descriptor: descriptor,
		fs:         NewFsLayer(descriptor.Root, filesystem),
		registry:   NewRegistryLayer(descriptor.Root, filesystem),
		runtimeEnv: NewRuntimeEnvLayer(descriptor.Root),
		filesystem: filesystem,
		clock:      clock.System{},
	}
}

// Descriptor returns the descriptor this runtime was built from.
func (r Runtime) Descriptor() Descriptor { return r.descriptor }

// Prepare runs the filesystem layer's Prepare followed by the
// registry layer's Prepare. Idempotent: re-running yields the same
// final state.
func (r Runtime) Prepare() error {
	if err := r.fs.Prepare(); err != nil {
		return err
	}
	if err := r.registry.Prepare(); err != nil {
		return err
	}
	return nil
}

// PersistManifest composes the three layer snapshots and the
// descriptor into a SandboxManifest and writes it as pretty JSON at
// <root>/runtime/manifest.json.
func (r Runtime) PersistManifest() (types.SandboxManifest, error) {
	manifest := types.SandboxManifest{
		ContainerID: r.descriptor.ContainerID,
		Name:        r.descriptor.Name,
		Platform:    r.descriptor.Platform,
		CreatedAt:   r.clock.Now().UTC().Format(time.RFC3339),
		Filesystem:  r.fs.Snapshot(),
		Registry:    r.registry.Snapshot(),
		Runtime:     r.runtimeEnv.Snapshot(r.descriptor.ContainerID),
	}

	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return types.SandboxManifest{}, fmt.Errorf("sandbox: marshal manifest: %w", err)
	}
	path := filepath.Join(r.descriptor.Root, "runtime", "manifest.json")
	if err := r.filesystem.WriteFile(path, raw, 0o644); err != nil {
		return types.SandboxManifest{}, fmt.Errorf("sandbox: write manifest: %w", err)
	}
	return manifest, nil
}
