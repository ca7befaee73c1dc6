// Package mcp exposes the limit solver as a Model Context Protocol server,
// so AI agents can call it as a set of tools over stdio or SSE.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/WillKirkmanM/lhopital"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SolveResponse is the structured result of the solve_limit tool.
type SolveResponse struct {
	Limit      float64 `json:"limit" jsonschema_description:"The numeric limit value"`
	Iterations int     `json:"iterations" jsonschema_description:"Number of iterations performed, including the final determinate one"`
}

// ExprResponse carries an expression in both wire and display form.
type ExprResponse struct {
	Expression string `json:"expression" jsonschema_description:"JSON expression tree"`
	Display    string `json:"display" jsonschema_description:"Infix rendering of the expression"`
}

// EvaluateResponse is the structured result of the evaluate tool.
type EvaluateResponse struct {
	Value float64 `json:"value" jsonschema_description:"The expression evaluated at the point"`
}

// Server exposes the limit solver as an MCP Server.
type Server struct {
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. The logger receives the
// solver's per-iteration progress for each tool call.
func NewServer(logger *slog.Logger) *Server {
	s := &Server{
		logger:    logger,
		mcpServer: server.NewMCPServer("lhopital-mcp", lhopital.Version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: solve_limit
	solveTool := mcp.NewTool("solve_limit",
		mcp.WithDescription("Compute the limit of numerator/denominator at a point, applying L'Hôpital's Rule to 0/0 forms."),
		mcp.WithString("numerator", mcp.Required(), mcp.Description("JSON expression tree for the numerator")),
		mcp.WithString("denominator", mcp.Required(), mcp.Description("JSON expression tree for the denominator")),
		mcp.WithNumber("at", mcp.Required(), mcp.Description("The point the variable approaches")),
		mcp.WithNumber("max_iterations", mcp.Description("Iteration budget for repeated differentiation (default 5)")),
		mcp.WithOutputSchema[SolveResponse](),
	)
	s.mcpServer.AddTool(solveTool, mcp.NewStructuredToolHandler(s.handleSolve))

	// TOOL: differentiate
	diffTool := mcp.NewTool("differentiate",
		mcp.WithDescription("Differentiate an expression with respect to the free variable."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("JSON expression tree")),
		mcp.WithOutputSchema[ExprResponse](),
	)
	s.mcpServer.AddTool(diffTool, mcp.NewStructuredToolHandler(s.handleDifferentiate))

	// TOOL: evaluate
	evalTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate an expression at a point."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("JSON expression tree")),
		mcp.WithNumber("at", mcp.Required(), mcp.Description("The point to evaluate at")),
		mcp.WithOutputSchema[EvaluateResponse](),
	)
	s.mcpServer.AddTool(evalTool, mcp.NewStructuredToolHandler(s.handleEvaluate))
}

// Handler methods for structured tools

func (s *Server) handleSolve(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SolveResponse, error) {
	numStr, _ := args["numerator"].(string)
	denStr, _ := args["denominator"].(string)
	at, _ := args["at"].(float64)

	maxIterations := 5
	if mi, ok := args["max_iterations"].(float64); ok {
		maxIterations = int(mi)
	}

	num, err := lhopital.ParseJSON([]byte(numStr))
	if err != nil {
		return SolveResponse{}, fmt.Errorf("numerator: %w", err)
	}
	den, err := lhopital.ParseJSON([]byte(denStr))
	if err != nil {
		return SolveResponse{}, fmt.Errorf("denominator: %w", err)
	}

	iterations := 0
	solver := lhopital.NewSolver(
		lhopital.WithLogger(s.logger),
		lhopital.WithObserver(func(lhopital.Step) {
			iterations++
		}),
	)

	limit, err := solver.Solve(num, den, at, maxIterations)
	if err != nil {
		slog.Warn("MCP solve_limit failed", "error", err)
		return SolveResponse{}, fmt.Errorf("solve failed: %w", err)
	}

	return SolveResponse{Limit: limit, Iterations: iterations}, nil
}

func (s *Server) handleDifferentiate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ExprResponse, error) {
	exprStr, _ := args["expression"].(string)

	expr, err := lhopital.ParseJSON([]byte(exprStr))
	if err != nil {
		return ExprResponse{}, err
	}

	derivative, err := expr.Differentiate()
	if err != nil {
		return ExprResponse{}, fmt.Errorf("differentiate failed: %w", err)
	}

	wire, err := lhopital.ToJSON(derivative)
	if err != nil {
		return ExprResponse{}, fmt.Errorf("encode failed: %w", err)
	}

	return ExprResponse{Expression: wire, Display: derivative.String()}, nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResponse, error) {
	exprStr, _ := args["expression"].(string)
	at, _ := args["at"].(float64)

	expr, err := lhopital.ParseJSON([]byte(exprStr))
	if err != nil {
		return EvaluateResponse{}, err
	}

	return EvaluateResponse{Value: expr.Evaluate(at)}, nil
}
