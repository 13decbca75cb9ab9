package sandbox

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/pyrunner/internal/apperror"
	"github.com/sakif/pyrunner/internal/executor"
	"github.com/sakif/pyrunner/internal/policy"
	"github.com/sakif/pyrunner/internal/validator"
)

// Supervisor is the concrete executor.Executor (spec.md §4.4): it owns one
// request end to end — validate, write scratch file, spawn, overlap stream
// drain / memory sampling / deadline enforcement, classify, clean up.
type Supervisor struct {
	cfg     Config
	spawner Spawner
	val     *validator.Validator
}

// NewSupervisor wires a Supervisor from service-level config. A nil
// catalog falls back to policy.Default().
func NewSupervisor(cfg Config, catalog *policy.Catalog) *Supervisor {
	return &Supervisor{
		cfg:     cfg.WithDefaults(),
		spawner: NewSpawner(),
		val:     validator.New(catalog),
	}
}

var _ executor.Executor = (*Supervisor)(nil)

// Execute runs exactly one request and is safe to call concurrently from
// multiple callers, per spec.md §4.4's contract — each call spawns an
// independent OS process and shares no mutable state with any other call.
func (s *Supervisor) Execute(ctx context.Context, req executor.ExecutionRequest) (executor.ExecutionOutcome, error) {
	start := time.Now()

	code := req.Code()
	result, err := s.val.Check(code)
	if err != nil {
		return s.rejected(start, apperror.ValidationRejected(err.Error()))
	}
	if !result.Valid {
		return s.rejected(start, apperror.ValidationRejected(result.Violations[0].String()))
	}

	if req.AutoPrint() {
		code = applyAutoPrint(code)
	}

	scratch, err := acquireScratchFile(s.cfg.ScratchDir, code)
	if err != nil {
		return executor.ExecutionOutcome{
			Status:               executor.StatusError,
			ExecutionTimeSeconds: time.Since(start).Seconds(),
			ErrorSummary:         apperror.SpawnFailed(err.Error()).Message,
		}, nil
	}
	defer scratch.release()

	limits := limitsFor(req.MemoryLimitMiB(), req.TimeoutSeconds())
	child, err := s.spawner.Spawn(s.cfg.InterpreterPath, scratch.path, limits)
	if err != nil {
		return executor.ExecutionOutcome{
			Status:               executor.StatusError,
			ExecutionTimeSeconds: time.Since(start).Seconds(),
			ErrorSummary:         apperror.SpawnFailed(err.Error()).Message,
		}, nil
	}

	outcome := s.supervise(ctx, child, req, start)
	if ctx.Err() != nil {
		return outcome, ctx.Err()
	}
	return outcome, nil
}

func (s *Supervisor) rejected(start time.Time, appErr *apperror.AppError) (executor.ExecutionOutcome, error) {
	return executor.ExecutionOutcome{
		Status:               executor.StatusError,
		ExecutionTimeSeconds: time.Since(start).Seconds(),
		ErrorSummary:         appErr.Message,
	}, nil
}

// supervise overlaps stream collection, memory sampling, and deadline
// enforcement. The enforcers (memory sampler, caller-cancellation watcher,
// deadline timer) run under a single errgroup (spec.md §9's "task group"
// re-architecture note): the first enforcer to fire cancels the group's
// context so the others observe it and stop promptly. Stream draining runs
// on its own WaitGroup, as explained below.
func (s *Supervisor) supervise(ctx context.Context, child *ChildProcess, req executor.ExecutionRequest, start time.Time) executor.ExecutionOutcome {
	// groupCtx is deliberately independent of the caller's ctx: it exists
	// only to let the first enforcer to fire stop the others. Caller
	// cancellation is watched separately below, against ctx itself, so
	// there is no race between ctx.Done() and a derived context closing
	// for the same reason.
	groupCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu         sync.Mutex
		timeoutEnf enforcement
		memoryEnf  enforcement
		peakMiB    float64
		sawSample  bool
		stdoutBuf  bytes.Buffer
		stderrBuf  bytes.Buffer
	)

	memCapMiB := float64(req.MemoryLimitMiB())
	timeout := time.Duration(req.TimeoutSeconds()) * time.Second

	// Stream drain runs under its own WaitGroup, separate from the
	// enforcer errgroup below: os/exec requires every read from a
	// StdoutPipe/StderrPipe to finish before Cmd.Wait is called, since
	// Wait closes the pipes the instant it sees the child exit. Draining
	// completes on its own once the child's fds close (naturally at exit,
	// or because an enforcer killed it), so drain completion is what
	// triggers cancellation of the sampler/deadline goroutines below —
	// not the other way around.
	var drainWG sync.WaitGroup
	drainWG.Add(2)
	go func() {
		defer drainWG.Done()
		io.Copy(&safeBufWriter{buf: &stdoutBuf, mu: &mu}, child.Stdout)
	}()
	go func() {
		defer drainWG.Done()
		io.Copy(&safeBufWriter{buf: &stderrBuf, mu: &mu}, child.Stderr)
	}()

	g, gctx := errgroup.WithContext(groupCtx)

	g.Go(func() error {
		ticker := time.NewTicker(s.cfg.SamplingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				mib, ok := sampleRSSMiB(child.PID)
				if !ok {
					continue
				}
				mu.Lock()
				sawSample = true
				if mib > peakMiB {
					peakMiB = mib
				}
				mu.Unlock()
				if mib >= memCapMiB {
					mu.Lock()
					if !memoryEnf.fired {
						memoryEnf = enforcement{fired: true, at: time.Now()}
					}
					mu.Unlock()
					child.Terminate()
					cancel()
					return nil
				}
			}
		}
	})

	// Caller cancellation (spec.md §5): terminate then kill the process
	// group on the caller's own context, independent of the request's own
	// timeout enforcer.
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case <-ctx.Done():
			child.Terminate()
			select {
			case <-time.After(s.cfg.KillGracePeriod):
				child.Kill()
			case <-gctx.Done():
			}
			cancel()
			return nil
		}
	})

	g.Go(func() error {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-gctx.Done():
			return nil
		case <-timer.C:
			mu.Lock()
			if !timeoutEnf.fired {
				timeoutEnf = enforcement{fired: true, at: time.Now()}
			}
			mu.Unlock()
			child.Terminate()
			select {
			case <-time.After(s.cfg.KillGracePeriod):
				child.Kill()
			case <-gctx.Done():
			}
			cancel()
			return nil
		}
	})

	drainWG.Wait()
	cancel()
	_ = g.Wait()
	waitErr := child.Cmd.Wait()

	elapsed := time.Since(start).Seconds()

	mu.Lock()
	defer mu.Unlock()

	exitCode, killedBySignal, oomLikely := exitDetails(waitErr)
	// The interpreter reports an allocation refused under RLIMIT_AS as an
	// uncaught MemoryError and a non-zero exit, not as a signal.
	if exitCode != 0 && !killedBySignal && strings.Contains(stderrBuf.String(), "MemoryError") {
		oomLikely = true
	}

	status := classify(classifyInput{
		timeout:         timeoutEnf,
		memoryExceeded:  memoryEnf,
		exitCode:        exitCode,
		killedBySignal:  killedBySignal,
		oomLikelySignal: oomLikely,
	})

	outcome := executor.ExecutionOutcome{
		Status:               status,
		Stdout:               stdoutBuf.String(),
		Stderr:               stderrBuf.String(),
		ExecutionTimeSeconds: elapsed,
	}
	if sawSample {
		peak := peakMiB
		outcome.PeakMemoryMiB = &peak
	}

	switch status {
	case executor.StatusTimeout:
		outcome.ErrorSummary = apperror.TimedOut(req.TimeoutSeconds()).Message
		outcome.Stderr += "\n" + outcome.ErrorSummary
	case executor.StatusMemoryExceeded:
		outcome.ErrorSummary = apperror.MemoryExceeded(req.MemoryLimitMiB()).Message
	case executor.StatusError:
		outcome.ErrorSummary = apperror.ChildRuntime(childErrorSummary(exitCode, killedBySignal, outcome.Stderr)).Message
	}

	return outcome
}

func childErrorSummary(exitCode int, killedBySignal bool, stderr string) string {
	if killedBySignal {
		return "interpreter terminated by signal"
	}
	if stderr != "" {
		return "interpreter exited with a non-zero status"
	}
	return "interpreter exited with status " + strconv.Itoa(exitCode)
}

// safeBufWriter serializes concurrent writes from the two stream-drain
// goroutines into their respective buffers under the same mutex the
// sampler and deadline goroutines use, since all three publish into shared
// state the final classifier reads after the group joins.
type safeBufWriter struct {
	buf *bytes.Buffer
	mu  *sync.Mutex
}

func (w *safeBufWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
