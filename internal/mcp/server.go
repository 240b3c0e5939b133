// Package mcp implements an MCP (Model Context Protocol) server exposing the
// star jar of a running starjar server as tools for AI agents.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wondertwin-ai/starjar/internal/client"
)

// Name is reported as serverInfo.name during initialization.
const Name = "starjar-mcp"

// Server serves star jar tools backed by a starjar HTTP client.
type Server struct {
	mcpServer *mcp.Server
}

// NewServer creates an MCP server backed by c.
func NewServer(c *client.Client, version string) *Server {
	s := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	registerTools(s, c)
	return &Server{mcpServer: s}
}

// Serve runs the server on stdio until the client hangs up or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// ServeIO runs the server over arbitrary newline-delimited streams.
func (s *Server) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	return s.Run(ctx, &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	})
}

// Run serves a single session over transport.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("serve MCP: %w", err)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
