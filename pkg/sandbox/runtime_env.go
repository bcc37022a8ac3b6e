package sandbox

import (
	"path/filepath"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// RuntimeEnvLayer derives the environment mapping a future process
// launcher would inject into a process running inside the sandbox.
type RuntimeEnvLayer struct {
	workspace string
}

// NewRuntimeEnvLayer constructs a runtime-env layer rooted at root/runtime.
func NewRuntimeEnvLayer(root string) RuntimeEnvLayer {
	return RuntimeEnvLayer{workspace: filepath.Join(root, "runtime")}
}

// Snapshot returns the ORBIT_* environment variables for containerID.
func (l RuntimeEnvLayer) Snapshot(containerID string) types.RuntimeEnvSnapshot {
	return types.RuntimeEnvSnapshot{
		Env: map[string]string{
			"ORBIT_CONTAINER_ID": containerID,
			"ORBIT_RUNTIME_ROOT": l.workspace,
		},
	}
}
