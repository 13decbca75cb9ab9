package sandbox

import (
	"errors"
	"io"
	"os/exec"
)

// ErrPlatformUnsupported is returned by spawners on platforms lacking the
// OS primitives spec.md §4.3 requires, rather than starting a child with
// silently weaker isolation.
var ErrPlatformUnsupported = errors.New("sandbox: platform does not support resource-limited spawning")

// ChildProcess is a handle to a spawned interpreter: its process-group
// identifier, its stream readers, and the underlying *exec.Cmd needed to
// wait on and signal it. Created by the spawner, mutated only by the
// supervisor, per spec.md §3.
type ChildProcess struct {
	Cmd    *exec.Cmd
	PID    int
	PGID   int
	Stdout io.ReadCloser
	Stderr io.ReadCloser
}

// Spawner launches an interpreter under the given limits against a
// scratch file and returns a handle to it. The child is already started
// (fork+exec complete) when Spawn returns without error.
type Spawner interface {
	Spawn(interpreterPath, scratchFile string, limits Limits) (*ChildProcess, error)
}
