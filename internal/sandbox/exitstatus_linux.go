//go:build linux

package sandbox

import (
	"errors"
	"os/exec"
	"syscall"
)

// exitDetails decodes Cmd.Wait's error into the plain facts classify needs,
// including a best-effort guess at an OS address-space kill (SIGKILL/SIGSEGV
// with no enforcer having fired is the closest signal this layer can see to
// "the kernel killed it for exceeding RLIMIT_AS").
func exitDetails(waitErr error) (exitCode int, killedBySignal bool, oomLikely bool) {
	if waitErr == nil {
		return 0, false, false
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				sig := status.Signal()
				return -1, true, sig == syscall.SIGKILL || sig == syscall.SIGSEGV
			}
			return status.ExitStatus(), false, false
		}
		return exitErr.ExitCode(), false, false
	}
	return -1, false, false
}
