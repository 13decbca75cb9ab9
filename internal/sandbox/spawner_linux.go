//go:build linux

package sandbox

import (
	"fmt"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// linuxSpawner is the platform-qualified implementation of Spawner
// described in SPEC_FULL.md §4.3. Go's os/exec gives no hook between fork
// and exec (unlike Python's preexec_fn), so the rlimits cannot be applied
// "before exec" in the child; instead, following the precedent in
// FouGuai-FUZOJ's engine_linux.go of attaching cgroup limits immediately
// after cmd.Start() rather than before, this spawner sets Setpgid at fork
// time (the one piece SysProcAttr does support atomically) and applies the
// rlimits to the already-running child's PID via prlimit(2) right after
// Start() returns.
type linuxSpawner struct{}

func NewSpawner() Spawner { return &linuxSpawner{} }

func (s *linuxSpawner) Spawn(interpreterPath, scratchFile string, limits Limits) (*ChildProcess, error) {
	cmd := exec.Command(interpreterPath, "-I", "-S", scratchFile)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("sandbox: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("sandbox: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("sandbox: start interpreter: %w", err)
	}
	pid := cmd.Process.Pid

	if err := applyLimits(pid, limits); err != nil {
		_ = syscall.Kill(-pid, syscall.SIGKILL)
		_, _ = cmd.Process.Wait()
		return nil, fmt.Errorf("sandbox: apply resource limits: %w", err)
	}

	return &ChildProcess{
		Cmd:    cmd,
		PID:    pid,
		PGID:   pid, // Setpgid with no Pgid field makes the child its own group leader
		Stdout: stdout,
		Stderr: stderr,
	}, nil
}

// applyLimits sets RLIMIT_AS, RLIMIT_CPU, RLIMIT_NOFILE, and RLIMIT_CORE on
// the already-started child via prlimit(2) — the only POSIX facility that
// can set another process's rlimits after it exists. A failure here must
// not leave the child running with partial limits, so the caller kills it.
func applyLimits(pid int, limits Limits) error {
	addressSpace := uint64(limits.MemoryMiB) << 20
	rlimits := []struct {
		resource int
		value    unix.Rlimit
	}{
		{unix.RLIMIT_AS, unix.Rlimit{Cur: addressSpace, Max: addressSpace}},
		{unix.RLIMIT_CPU, unix.Rlimit{Cur: uint64(limits.CPUSeconds), Max: uint64(limits.CPUSeconds)}},
		{unix.RLIMIT_NOFILE, unix.Rlimit{Cur: uint64(limits.FDCount), Max: uint64(limits.FDCount)}},
		{unix.RLIMIT_CORE, unix.Rlimit{Cur: uint64(limits.CoreDumpSize), Max: uint64(limits.CoreDumpSize)}},
	}
	for _, rl := range rlimits {
		newLimit := rl.value
		if err := unix.Prlimit(pid, rl.resource, &newLimit, nil); err != nil {
			return fmt.Errorf("prlimit(resource=%d): %w", rl.resource, err)
		}
	}
	return nil
}

// Terminate sends SIGTERM to the child's entire process group, matching
// FouGuai-FUZOJ's killProcessGroup pattern but with a softer signal so the
// interpreter gets a chance to unwind before Kill follows.
func (c *ChildProcess) Terminate() {
	if c.PGID <= 0 {
		return
	}
	_ = syscall.Kill(-c.PGID, syscall.SIGTERM)
}

// Kill sends SIGKILL to the child's entire process group.
func (c *ChildProcess) Kill() {
	if c.PGID <= 0 {
		return
	}
	_ = syscall.Kill(-c.PGID, syscall.SIGKILL)
}
