package sandbox

import (
	"testing"
	"time"

	"github.com/sakif/pyrunner/internal/executor"
)

func TestClassifySuccess(t *testing.T) {
	got := classify(classifyInput{exitCode: 0})
	if got != executor.StatusSuccess {
		t.Errorf("got %v, want StatusSuccess", got)
	}
}

func TestClassifyErrorOnNonZeroExit(t *testing.T) {
	got := classify(classifyInput{exitCode: 1})
	if got != executor.StatusError {
		t.Errorf("got %v, want StatusError", got)
	}
}

func TestClassifyTimeoutWhenDeadlineFired(t *testing.T) {
	got := classify(classifyInput{
		timeout:  enforcement{fired: true, at: time.Now()},
		exitCode: -1,
	})
	if got != executor.StatusTimeout {
		t.Errorf("got %v, want StatusTimeout", got)
	}
}

func TestClassifyMemoryExceededWhenSamplerFired(t *testing.T) {
	got := classify(classifyInput{
		memoryExceeded: enforcement{fired: true, at: time.Now()},
		exitCode:       -1,
	})
	if got != executor.StatusMemoryExceeded {
		t.Errorf("got %v, want StatusMemoryExceeded", got)
	}
}

func TestClassifyMemoryExceededOnOOMSignalEvenIfExitZero(t *testing.T) {
	got := classify(classifyInput{exitCode: 0, oomLikelySignal: true})
	if got != executor.StatusMemoryExceeded {
		t.Errorf("got %v, want StatusMemoryExceeded", got)
	}
}

func TestClassifyTieBreakEarlierEnforcerWins(t *testing.T) {
	now := time.Now()
	got := classify(classifyInput{
		timeout:        enforcement{fired: true, at: now},
		memoryExceeded: enforcement{fired: true, at: now.Add(time.Millisecond)},
		exitCode:       -1,
	})
	if got != executor.StatusTimeout {
		t.Errorf("got %v, want StatusTimeout (earlier enforcer)", got)
	}

	got = classify(classifyInput{
		timeout:        enforcement{fired: true, at: now.Add(time.Millisecond)},
		memoryExceeded: enforcement{fired: true, at: now},
		exitCode:       -1,
	})
	if got != executor.StatusMemoryExceeded {
		t.Errorf("got %v, want StatusMemoryExceeded (earlier enforcer)", got)
	}
}

func TestClassifyMemoryExceededSurvivesZeroExit(t *testing.T) {
	// spec.md §4.4 tie-break note: a zero exit after an already-acted-on
	// memory breach must still classify as MemoryExceeded.
	got := classify(classifyInput{
		memoryExceeded: enforcement{fired: true, at: time.Now()},
		exitCode:       0,
	})
	if got != executor.StatusMemoryExceeded {
		t.Errorf("got %v, want StatusMemoryExceeded", got)
	}
}

func TestClassifyKilledBySignalWithoutEnforcerIsError(t *testing.T) {
	got := classify(classifyInput{exitCode: -1, killedBySignal: true})
	if got != executor.StatusError {
		t.Errorf("got %v, want StatusError", got)
	}
}
