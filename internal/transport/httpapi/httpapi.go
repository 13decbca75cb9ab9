// Package httpapi is the thin HTTP transport adapter SPEC_FULL.md §6A
// describes: it maps JSON requests to executor.ExecutionRequest, calls the
// core, and maps the outcome back to the JSON shape spec.md §6 specifies.
// It contains no sandboxing logic of its own — every rule lives in
// internal/policy, internal/validator, and internal/sandbox.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/pyrunner/internal/executor"
	"github.com/sakif/pyrunner/internal/middleware"
)

// Handler wires the core executor.Executor and a fixed ServiceDescriptor
// to HTTP routes.
type Handler struct {
	exec       executor.Executor
	descriptor executor.ServiceDescriptor
	logger     *slog.Logger
}

// NewHandler creates a Handler. descriptor is computed once at startup
// since it is fixed for the process's lifetime (spec.md §6 health probe).
func NewHandler(exec executor.Executor, descriptor executor.ServiceDescriptor, logger *slog.Logger) *Handler {
	return &Handler{exec: exec, descriptor: descriptor, logger: logger}
}

// Routes builds the chi router: POST /api/execute and GET /api/health,
// per SPEC_FULL.md §6A.
func (h *Handler) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/execute", h.HandleExecute)
		r.Get("/health", h.HandleHealth)
	})
	return r
}

// executeRequestBody is the JSON shape spec.md §6 describes: code is
// required, the rest have core-level defaults applied by
// executor.NewExecutionRequest.
type executeRequestBody struct {
	Code        string `json:"code"`
	TimeoutSecs *int   `json:"timeout"`
	MemoryMiB   *int   `json:"memory_limit"`
	AutoPrint   bool   `json:"auto_print"`
}

// executeResponseBody is the JSON shape spec.md §6 specifies, rounding
// execution_time to 3 fractional digits and memory_used to 2.
type executeResponseBody struct {
	Status        string   `json:"status"`
	Stdout        string   `json:"stdout"`
	Stderr        string   `json:"stderr"`
	ExecutionTime float64  `json:"execution_time"`
	MemoryUsed    *float64 `json:"memory_used,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// HandleExecute decodes a request body, maps bounds failures to 400
// before the core ever sees them, runs the request, and maps the outcome
// to the spec's JSON shape.
func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var body executeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warn("invalid execute request body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := []executor.Option{executor.WithAutoPrint(body.AutoPrint)}
	if body.TimeoutSecs != nil {
		opts = append(opts, executor.WithTimeoutSeconds(*body.TimeoutSecs))
	}
	if body.MemoryMiB != nil {
		opts = append(opts, executor.WithMemoryLimitMiB(*body.MemoryMiB))
	}

	req, err := executor.NewExecutionRequest(body.Code, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.exec.Execute(r.Context(), req)
	if err != nil {
		h.logger.Error("execution failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error during execution")
		return
	}

	resp := executeResponseBody{
		Status:        string(outcome.Status),
		Stdout:        outcome.Stdout,
		Stderr:        outcome.Stderr,
		ExecutionTime: round(outcome.ExecutionTimeSeconds, 3),
		Error:         outcome.ErrorSummary,
	}
	if outcome.PeakMemoryMiB != nil {
		used := round(*outcome.PeakMemoryMiB, 2)
		resp.MemoryUsed = &used
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleHealth returns the fixed ServiceDescriptor, per spec.md §6's health
// probe contract.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.descriptor)
}

func round(v float64, digits int) float64 {
	mult := math.Pow(10, float64(digits))
	return math.Round(v*mult) / mult
}

type errorResponseBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponseBody{Error: message})
}
