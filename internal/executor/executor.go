// Package executor defines the core request/outcome types and the
// interface every sandbox implementation satisfies. It has no behavior of
// its own — internal/sandbox provides the concrete Executor.
package executor

import (
	"context"
	"fmt"
)

const (
	minTimeoutSeconds = 1
	maxTimeoutSeconds = 300
	defaultTimeout    = 30

	minMemoryLimitMiB = 64
	maxMemoryLimitMiB = 2048
	defaultMemoryMiB  = 512

	maxCodeBytes = 1 << 20 // 1 MiB
)

// ExecutionRequest is the validated, immutable input to the core. Use
// NewExecutionRequest rather than constructing one directly so the bounds
// in spec.md §3 are always enforced.
type ExecutionRequest struct {
	code           string
	timeoutSeconds int
	memoryLimitMiB int
	autoPrint      bool
}

func (r ExecutionRequest) Code() string       { return r.code }
func (r ExecutionRequest) TimeoutSeconds() int { return r.timeoutSeconds }
func (r ExecutionRequest) MemoryLimitMiB() int { return r.memoryLimitMiB }
func (r ExecutionRequest) AutoPrint() bool     { return r.autoPrint }

// Option configures optional ExecutionRequest fields beyond code.
type Option func(*ExecutionRequest)

func WithTimeoutSeconds(seconds int) Option {
	return func(r *ExecutionRequest) { r.timeoutSeconds = seconds }
}

func WithMemoryLimitMiB(mib int) Option {
	return func(r *ExecutionRequest) { r.memoryLimitMiB = mib }
}

func WithAutoPrint(enabled bool) Option {
	return func(r *ExecutionRequest) { r.autoPrint = enabled }
}

// NewExecutionRequest validates code and applies options, returning an
// error the transport layer can map to a 4xx response without the core
// ever seeing an out-of-bounds request.
func NewExecutionRequest(code string, opts ...Option) (ExecutionRequest, error) {
	req := ExecutionRequest{
		code:           code,
		timeoutSeconds: defaultTimeout,
		memoryLimitMiB: defaultMemoryMiB,
	}
	for _, opt := range opts {
		opt(&req)
	}
	if err := req.validateBounds(); err != nil {
		return ExecutionRequest{}, err
	}
	return req, nil
}

func (r ExecutionRequest) validateBounds() error {
	if len(r.code) == 0 || isWhitespaceOnly(r.code) {
		return fmt.Errorf("code must not be empty or whitespace-only")
	}
	if len(r.code) > maxCodeBytes {
		return fmt.Errorf("code exceeds maximum size of %d bytes", maxCodeBytes)
	}
	if r.timeoutSeconds < minTimeoutSeconds || r.timeoutSeconds > maxTimeoutSeconds {
		return fmt.Errorf("timeout_seconds must be between %d and %d", minTimeoutSeconds, maxTimeoutSeconds)
	}
	if r.memoryLimitMiB < minMemoryLimitMiB || r.memoryLimitMiB > maxMemoryLimitMiB {
		return fmt.Errorf("memory_limit_mib must be between %d and %d", minMemoryLimitMiB, maxMemoryLimitMiB)
	}
	return nil
}

func isWhitespaceOnly(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			continue
		default:
			return false
		}
	}
	return true
}

// Status is the four-way outcome classification, spec.md §3/§4.4.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
	StatusTimeout        Status = "timeout"
	StatusMemoryExceeded Status = "memory_exceeded"
)

// ExecutionOutcome is the result of one Execute call.
type ExecutionOutcome struct {
	Status               Status
	Stdout               string
	Stderr               string
	ExecutionTimeSeconds float64
	PeakMemoryMiB        *float64
	ErrorSummary         string
}

// Executor is the core interface every sandbox implementation satisfies.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (ExecutionOutcome, error)
}
