package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/stagehand/pkg/adapters/mcp"
)

// MCPOptions selects the MCP transport.
type MCPOptions struct {
	// Transport is stdio or sse.
	Transport string
	// Addr and BaseURL are used by the SSE transport.
	Addr    string
	BaseURL string
}

// ServeMCP exposes st's coordinator as an MCP server until ctx is cancelled
// (SSE) or Stdin closes (stdio).
func ServeMCP(ctx context.Context, st *Stack, opts MCPOptions, logger *slog.Logger) error {
	srv := mcp.NewServer(st.Coordinator, logger)

	switch opts.Transport {
	case "", "stdio":
		logger.Info("Starting Stagehand MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost" + opts.Addr
		}
		logger.Info("Starting Stagehand MCP Server (SSE)", "addr", opts.Addr, "base_url", baseURL)
		if err := srv.ServeSSE(ctx, opts.Addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	}
}
