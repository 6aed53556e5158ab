package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/component-atlas/internal/discovery"
	"github.com/mvp-joe/component-atlas/internal/logging"
	"github.com/mvp-joe/component-atlas/internal/query"
)

// ServerConfig names the server in the MCP handshake.
type ServerConfig struct {
	Name    string
	Version string
}

// Server exposes the component tools over MCP stdio.
type Server struct {
	config  ServerConfig
	boot    *discovery.Bootstrapper
	queries *query.Service
	logger  *log.Logger
	mcp     *server.MCPServer
}

// NewServer registers the four component tools.
func NewServer(config ServerConfig, boot *discovery.Bootstrapper, queries *query.Service, logger *log.Logger) *Server {
	if config.Name == "" {
		config.Name = "component-atlas"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	AddListComponentsTool(mcpServer, boot)
	AddGetComponentTool(mcpServer, boot)
	AddSearchComponentsTool(mcpServer, boot, queries)
	AddSyncMetadataTool(mcpServer, boot)

	return &Server{
		config:  config,
		boot:    boot,
		queries: queries,
		logger:  logger,
		mcp:     mcpServer,
	}
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve starts the MCP server on stdio and blocks until shutdown. Stdout
// carries the protocol, so all logging goes to the configured logger.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting MCP server on stdio", "name", s.config.Name, "version", s.config.Version)
		if err := server.ServeStdio(s.mcp, server.WithErrorLogger(s.logger.StandardLog())); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.logger.Info("Received shutdown signal, stopping gracefully")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the query cache.
func (s *Server) Close() error {
	if s.queries != nil {
		s.queries.Close()
	}
	return nil
}
