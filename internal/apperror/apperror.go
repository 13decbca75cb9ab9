// Package apperror models the outcome taxonomy from spec.md §7 as a tagged
// enum over sentinel errors, the same way the original playground modeled
// its CRUD errors: a small set of package-level sentinels plus an *AppError
// wrapper that carries a human-readable message without losing the ability
// to errors.Is/errors.As against the category.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinels corresponding to spec.md §9's tagged enum:
// {ValidationRejected, SpawnFailed, ChildRuntimeError, Timeout, MemoryExceeded, InternalDefect}.
var (
	ErrValidationRejected = errors.New("validation rejected")
	ErrSpawnFailed        = errors.New("spawn failed")
	ErrChildRuntime       = errors.New("child runtime error")
	ErrTimeout            = errors.New("timeout")
	ErrMemoryExceeded     = errors.New("memory exceeded")
	ErrInternalDefect     = errors.New("internal defect")
)

type AppError struct {
	Err     error  // category sentinel
	Message string // human-readable, caller-visible description
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationRejected wraps a static-validator or request-bounds rejection reason.
func ValidationRejected(reason string) *AppError {
	return &AppError{Err: ErrValidationRejected, Message: reason}
}

// SpawnFailed wraps an OS-level failure to start the child process.
func SpawnFailed(reason string) *AppError {
	return &AppError{Err: ErrSpawnFailed, Message: reason}
}

// ChildRuntime wraps a non-zero child exit not attributable to an enforcer.
func ChildRuntime(reason string) *AppError {
	return &AppError{Err: ErrChildRuntime, Message: reason}
}

// TimedOut wraps the canonical timeout notice.
func TimedOut(timeoutSeconds int) *AppError {
	return &AppError{Err: ErrTimeout, Message: fmt.Sprintf("execution timed out after %d seconds", timeoutSeconds)}
}

// MemoryExceeded wraps the canonical memory-cap notice.
func MemoryExceeded(limitMiB int) *AppError {
	return &AppError{Err: ErrMemoryExceeded, Message: fmt.Sprintf("memory limit of %d MiB exceeded", limitMiB)}
}

// InternalDefect wraps an unexpected supervisor failure. The message passed
// here must never contain stack traces or internal paths — spec.md §7.
func InternalDefect(reason string) *AppError {
	return &AppError{Err: ErrInternalDefect, Message: reason}
}
