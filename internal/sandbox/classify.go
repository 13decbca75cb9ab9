package sandbox

import (
	"time"

	"github.com/sakif/pyrunner/internal/executor"
)

// enforcement is an enforcer's firing record: whether it fired at all, and
// when, so the classifier can break ties deterministically (spec.md §4.4
// "Tie-breaks").
type enforcement struct {
	fired bool
	at    time.Time
}

// classifyInput bundles everything the decision table in spec.md §4.4
// needs: which enforcers fired and when, and how the child itself exited.
type classifyInput struct {
	timeout         enforcement
	memoryExceeded  enforcement
	exitCode        int
	killedBySignal  bool
	oomLikelySignal bool // the child's own termination looked like an OS address-space/OOM kill
}

// classify implements spec.md §4.4's decision table plus its tie-break
// rule: if both enforcers fired, the one with the earlier timestamp wins.
func classify(in classifyInput) executor.Status {
	switch {
	case in.timeout.fired && in.memoryExceeded.fired:
		if in.timeout.at.Before(in.memoryExceeded.at) {
			return executor.StatusTimeout
		}
		return executor.StatusMemoryExceeded
	case in.timeout.fired:
		return executor.StatusTimeout
	case in.memoryExceeded.fired:
		return executor.StatusMemoryExceeded
	case in.oomLikelySignal:
		return executor.StatusMemoryExceeded
	case in.exitCode == 0 && !in.killedBySignal:
		return executor.StatusSuccess
	default:
		return executor.StatusError
	}
}
