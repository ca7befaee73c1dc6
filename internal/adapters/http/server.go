// Package http exposes the limit solver as a JSON API over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/WillKirkmanM/lhopital"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// SolveRequest is the body of POST /solve.
type SolveRequest struct {
	Numerator     json.RawMessage `json:"numerator"`
	Denominator   json.RawMessage `json:"denominator"`
	At            float64         `json:"at"`
	MaxIterations int             `json:"max_iterations"`
}

// SolveResponse is the body of a successful POST /solve.
type SolveResponse struct {
	Limit      float64 `json:"limit"`
	Iterations int     `json:"iterations"`
}

// ExprRequest is the body of POST /differentiate and POST /evaluate.
type ExprRequest struct {
	Expression json.RawMessage `json:"expression"`
	At         float64         `json:"at"`
}

// ExprResponse is the body of a successful POST /differentiate.
type ExprResponse struct {
	Expression json.RawMessage `json:"expression"`
	Display    string          `json:"display"`
}

// EvaluateResponse is the body of a successful POST /evaluate.
type EvaluateResponse struct {
	Value float64 `json:"value"`
}

// ErrorResponse is the body of any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Server carries the handler's logger and metrics.
type Server struct {
	logger     *slog.Logger
	solves     *prometheus.CounterVec
	iterations prometheus.Histogram
}

// NewHandler creates an HTTP handler exposing the solver. Metrics are
// registered on a handler-private registry served at GET /metrics.
func NewHandler(logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	solves := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lhopital_solves_total",
			Help: "Total number of solve requests by outcome",
		},
		[]string{"outcome"},
	)
	iterations := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lhopital_solve_iterations",
			Help:    "Iterations performed per successful solve",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)
	registry.MustRegister(solves, iterations)

	s := &Server{
		logger:     logger,
		solves:     solves,
		iterations: iterations,
	}

	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Post("/solve", s.handleSolve)
	r.Post("/differentiate", s.handleDifferentiate)
	r.Post("/evaluate", s.handleEvaluate)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": lhopital.Version})
}

// Solve handles the POST /solve request.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	num, err := lhopital.ParseJSON(req.Numerator)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	den, err := lhopital.ParseJSON(req.Denominator)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 5
	}

	count := 0
	solver := lhopital.NewSolver(
		lhopital.WithLogger(s.logger),
		lhopital.WithObserver(func(lhopital.Step) {
			count++
		}),
	)

	limit, err := solver.Solve(num, den, req.At, maxIterations)
	if err != nil {
		kind := errorKind(err)
		s.solves.WithLabelValues(kind).Inc()
		s.fail(w, http.StatusUnprocessableEntity, kind, err)
		return
	}

	s.solves.WithLabelValues("ok").Inc()
	s.iterations.Observe(float64(count))
	writeJSON(w, http.StatusOK, SolveResponse{Limit: limit, Iterations: count})
}

// Differentiate handles the POST /differentiate request.
func (s *Server) handleDifferentiate(w http.ResponseWriter, r *http.Request) {
	var req ExprRequest
	if !decodeBody(w, r, &req) {
		return
	}

	expr, err := lhopital.ParseJSON(req.Expression)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	derivative, err := expr.Differentiate()
	if err != nil {
		s.fail(w, http.StatusUnprocessableEntity, errorKind(err), err)
		return
	}

	wire, err := lhopital.ToJSON(derivative)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "internal", err)
		return
	}

	writeJSON(w, http.StatusOK, ExprResponse{
		Expression: json.RawMessage(wire),
		Display:    derivative.String(),
	})
}

// Evaluate handles the POST /evaluate request.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req ExprRequest
	if !decodeBody(w, r, &req) {
		return
	}

	expr, err := lhopital.ParseJSON(req.Expression)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{Value: expr.Evaluate(req.At)})
}

func (s *Server) fail(w http.ResponseWriter, status int, kind string, err error) {
	s.logger.Warn("request failed", "kind", kind, "error", err)
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, lhopital.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, lhopital.ErrMaxIterations):
		return "max_iterations_exceeded"
	case errors.Is(err, lhopital.ErrUnsupportedRule):
		return "unsupported_rule"
	default:
		return "internal"
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: "bad_request"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}
