// Package sandbox is the resource-limited spawner and execution supervisor
// (spec.md §4.3/§4.4): it owns everything downstream of an admitted
// ExecutionRequest — writing the scratch file, launching the interpreter
// under OS-enforced resource caps, watching it, and classifying the
// result.
package sandbox

import "time"

// Limits are the OS-primitive caps applied to a spawned interpreter.
type Limits struct {
	MemoryMiB    int
	CPUSeconds   int
	FDCount      int
	CoreDumpSize int64
}

// hardCPUCeilingSeconds bounds CPU-bound runaways even if the supervisor's
// own wall-clock enforcement fails, per spec.md §5 "Timeouts".
const hardCPUCeilingSeconds = 300

const defaultFDCount = 50

// Config configures a Supervisor at startup (spec.md §9's "configuration
// object with optional fields" note): the interpreter path and the scratch
// directory are service-level, not per-request.
type Config struct {
	InterpreterPath string
	ScratchDir      string
	SamplingPeriod  time.Duration
	KillGracePeriod time.Duration
}

// WithDefaults fills unset fields with the shipped defaults.
func (c Config) WithDefaults() Config {
	if c.SamplingPeriod <= 0 {
		c.SamplingPeriod = 100 * time.Millisecond
	}
	if c.KillGracePeriod <= 0 {
		c.KillGracePeriod = 500 * time.Millisecond
	}
	if c.ScratchDir == "" {
		c.ScratchDir = defaultScratchDir()
	}
	return c
}

// limitsFor derives the spawner's resource caps from one request. The
// CPU-time cap tracks the request's own timeout rather than always using
// the hard ceiling, so a short-timeout request cannot hold the CPU for the
// full 300s if its wall-clock deadline enforcement is ever delayed; the
// ceiling still bounds it regardless of what the caller asked for.
func limitsFor(memoryMiB, timeoutSeconds int) Limits {
	cpuSeconds := timeoutSeconds
	if cpuSeconds > hardCPUCeilingSeconds {
		cpuSeconds = hardCPUCeilingSeconds
	}
	return Limits{
		MemoryMiB:    memoryMiB,
		CPUSeconds:   cpuSeconds,
		FDCount:      defaultFDCount,
		CoreDumpSize: 0,
	}
}
