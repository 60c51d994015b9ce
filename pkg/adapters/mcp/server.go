// Package mcp exposes registered capabilities as Model Context Protocol
// tools, so external agents can call them through the same router and
// timeout discipline as the assistant itself.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stewardhq/steward/internal/logging"
	"github.com/stewardhq/steward/pkg/domain"
	"github.com/stewardhq/steward/pkg/registry"
)

// Version is reported during the MCP handshake.
const Version = "0.1.0"

// Server wraps the capability router and exposes it as an MCP server.
type Server struct {
	registry  *registry.Registry
	router    *registry.Router
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates an MCP server over the given registry and router. One
// MCP tool is registered per capability operation, named
// "module_operation".
func NewServer(reg *registry.Registry, router *registry.Router, opts ...Option) *Server {
	s := &Server{
		registry:  reg,
		router:    router,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("steward", Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
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

func (s *Server) registerTools() {
	for _, module := range s.registry.Modules() {
		moduleID := module.ID()
		for _, op := range module.Operations() {
			call := moduleID + "." + op.ID

			toolOpts := []mcp.ToolOption{
				mcp.WithDescription(op.Description),
			}
			for _, p := range op.Params {
				toolOpts = append(toolOpts, paramOption(p))
			}

			tool := mcp.NewTool(moduleID+"_"+op.ID, toolOpts...)
			s.mcpServer.AddTool(tool, s.callHandler(call))
		}
	}
}

func paramOption(p domain.ParamSpec) mcp.ToolOption {
	var propOpts []mcp.PropertyOption
	if p.Description != "" {
		propOpts = append(propOpts, mcp.Description(p.Description))
	}
	if p.Required {
		propOpts = append(propOpts, mcp.Required())
	}

	switch p.Type {
	case domain.ParamInteger, domain.ParamFloat:
		return mcp.WithNumber(p.Name, propOpts...)
	case domain.ParamBoolean:
		return mcp.WithBoolean(p.Name, propOpts...)
	default:
		// Dates, times, durations, arrays and objects travel as strings and
		// are normalized by parameter validation on dispatch.
		return mcp.WithString(p.Name, propOpts...)
	}
}

func (s *Server) callHandler(call string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		s.logger.Debug("mcp tool call", "call", call)

		resp := s.router.Execute(ctx, call, args)
		switch v := resp.(type) {
		case domain.Error:
			return mcp.NewToolResultError(fmt.Sprintf("%s: %s", v.Code, v.Message)), nil
		case domain.PermissionRequired:
			return mcp.NewToolResultError(domain.Describe(v)), nil
		default:
			return mcp.NewToolResultText(domain.Describe(resp)), nil
		}
	}
}
