package cli

import (
	"log/slog"
	"os"

	trailmcp "github.com/claude/trailmark/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// MCPCmd serves the MCP tools on stdio, backed by the remote server. It
// lets a local assistant drive a tracker that runs elsewhere on the tailnet.
func MCPCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve MCP over stdio against the remote server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol; logs go to stderr.
			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
			s := trailmcp.New(clientFor(cmd), version, log)
			return server.ServeStdio(s)
		},
	}
}
