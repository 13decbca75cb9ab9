package sandbox_test

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pyrunner/internal/executor"
	"github.com/sakif/pyrunner/internal/policy"
	"github.com/sakif/pyrunner/internal/sandbox"
)

// findInterpreter locates a usable Python 3 binary, skipping the whole
// suite when none is present — the same accommodation the teacher's own
// docker_test.go makes for its external dependency (Docker) being
// unavailable on a given runner.
func findInterpreter(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no python3 interpreter available on this runner")
	return ""
}

func newTestSupervisor(t *testing.T) *sandbox.Supervisor {
	t.Helper()
	interpreter := findInterpreter(t)
	return sandbox.NewSupervisor(sandbox.Config{
		InterpreterPath: interpreter,
		ScratchDir:      t.TempDir(),
		SamplingPeriod:  20 * time.Millisecond,
		KillGracePeriod: 200 * time.Millisecond,
	}, policy.Default())
}

// The next seven tests mirror spec.md §8's seven concrete scenarios, one
// test function per scenario.

func TestExecuteHelloWorld(t *testing.T) {
	sup := newTestSupervisor(t)
	req, err := executor.NewExecutionRequest(`print("Hello, PyRunner!")`)
	require.NoError(t, err)

	outcome, err := sup.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, executor.StatusSuccess, outcome.Status)
	assert.Equal(t, "Hello, PyRunner!", strings.TrimSpace(outcome.Stdout))
}

func TestExecutePermittedImport(t *testing.T) {
	sup := newTestSupervisor(t)
	req, err := executor.NewExecutionRequest("import math\nprint(math.sqrt(16))",
		executor.WithTimeoutSeconds(10), executor.WithMemoryLimitMiB(256))
	require.NoError(t, err)

	outcome, err := sup.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, executor.StatusSuccess, outcome.Status)
	assert.Equal(t, "4.0", strings.TrimSpace(outcome.Stdout))
}

func TestExecuteForbiddenImportRejected(t *testing.T) {
	sup := newTestSupervisor(t)
	req, err := executor.NewExecutionRequest("import os\nprint(os.getcwd())",
		executor.WithTimeoutSeconds(10), executor.WithMemoryLimitMiB(256))
	require.NoError(t, err)

	outcome, err := sup.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, executor.StatusError, outcome.Status)
	assert.Empty(t, outcome.Stdout)
	assert.Contains(t, outcome.ErrorSummary, "os")
	assert.Less(t, outcome.ExecutionTimeSeconds, 0.5)
}

func TestExecuteTimeout(t *testing.T) {
	sup := newTestSupervisor(t)
	req, err := executor.NewExecutionRequest("while True: pass",
		executor.WithTimeoutSeconds(2), executor.WithMemoryLimitMiB(256))
	require.NoError(t, err)

	outcome, err := sup.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, executor.StatusTimeout, outcome.Status)
	assert.Empty(t, outcome.Stdout)
	assert.Contains(t, outcome.Stderr, "timed out")
}

func TestExecuteMemoryExceeded(t *testing.T) {
	sup := newTestSupervisor(t)
	req, err := executor.NewExecutionRequest("x = bytearray(600_000_000)",
		executor.WithTimeoutSeconds(30), executor.WithMemoryLimitMiB(128))
	require.NoError(t, err)

	outcome, err := sup.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, executor.StatusMemoryExceeded, outcome.Status)
	assert.Empty(t, outcome.Stdout)
}

func TestExecuteForbiddenBuiltinRejected(t *testing.T) {
	sup := newTestSupervisor(t)
	req, err := executor.NewExecutionRequest(`eval("1+1")`,
		executor.WithTimeoutSeconds(10), executor.WithMemoryLimitMiB(256))
	require.NoError(t, err)

	outcome, err := sup.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, executor.StatusError, outcome.Status)
	assert.Contains(t, outcome.ErrorSummary, "eval")
}

func TestExecuteChildRuntimeError(t *testing.T) {
	sup := newTestSupervisor(t)
	req, err := executor.NewExecutionRequest("print(1/0)",
		executor.WithTimeoutSeconds(10), executor.WithMemoryLimitMiB(256))
	require.NoError(t, err)

	outcome, err := sup.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, executor.StatusError, outcome.Status)
	assert.Contains(t, outcome.Stderr, "ZeroDivisionError")
}

func TestExecuteScratchFileRemovedAfterReturn(t *testing.T) {
	dir := t.TempDir()
	interpreter := findInterpreter(t)
	sup := sandbox.NewSupervisor(sandbox.Config{
		InterpreterPath: interpreter,
		ScratchDir:      dir,
	}, policy.Default())

	req, err := executor.NewExecutionRequest("print(1)")
	require.NoError(t, err)

	_, err = sup.Execute(context.Background(), req)
	require.NoError(t, err)

	entries, err := exec.Command("sh", "-c", "ls "+dir).CombinedOutput()
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(entries)))
}

func TestExecuteAutoPrintEchoesLastExpression(t *testing.T) {
	sup := newTestSupervisor(t)
	req, err := executor.NewExecutionRequest("1 + 2", executor.WithAutoPrint(true))
	require.NoError(t, err)

	outcome, err := sup.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, executor.StatusSuccess, outcome.Status)
	assert.Equal(t, "3", strings.TrimSpace(outcome.Stdout))
}
