//go:build !linux

package sandbox

// sampleRSSMiB has no /proc filesystem to read on non-Linux platforms.
// Per spec.md §9 Open Question 3, an absent sample surfaces as a missing
// PeakMemoryMiB rather than an error — the rlimit still caps memory
// regardless of whether sampling succeeds.
func sampleRSSMiB(pid int) (mib float64, ok bool) {
	return 0, false
}

const rssSamplingSupported = false
