// Package main is the entry point for the pyrunner sandboxed execution
// service.
//
// The executable is a thin adapter over internal/sandbox's core: it reads
// configuration from the environment, wires a slog logger, builds the
// chi-based HTTP API in internal/transport/httpapi, and runs it behind
// net/http.Server with graceful shutdown on SIGINT/SIGTERM — the same
// pattern the teacher repo's own server entry point used, carried over
// unchanged since it is ambient stack, not domain logic.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sakif/pyrunner/internal/executor"
	"github.com/sakif/pyrunner/internal/policy"
	"github.com/sakif/pyrunner/internal/sandbox"
	"github.com/sakif/pyrunner/internal/transport/httpapi"
)

const (
	serviceName    = "pyrunner"
	serviceVersion = "1.0.0"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := envInt("PORT", 8080, logger)

	interpreterPath := os.Getenv("INTERPRETER_PATH")
	if interpreterPath == "" {
		interpreterPath = "/usr/bin/python3"
	}

	scratchDir := os.Getenv("SCRATCH_DIR")

	supervisor := sandbox.NewSupervisor(sandbox.Config{
		InterpreterPath: interpreterPath,
		ScratchDir:      scratchDir,
	}, policy.Default())

	descriptor := executor.NewServiceDescriptor(serviceName, serviceVersion, policy.Default().PermittedImportNames())

	handler := httpapi.NewHandler(supervisor, descriptor, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 310 * time.Second, // covers the hard 300s CPU ceiling plus margin
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.Int("port", port),
			slog.String("interpreter", interpreterPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	}
}

func envInt(name string, fallback int, logger *slog.Logger) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Error("invalid integer environment variable", slog.String("name", name), slog.String("value", raw))
		os.Exit(1)
	}
	return v
}
