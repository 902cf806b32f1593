package main

import (
	"fmt"

	"api-testcase-generator/internal/api"
	"api-testcase-generator/internal/mcpserver"
	"api-testcase-generator/internal/repl"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the generator tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				log.Info().Str("name", mcpserver.ServerName).Str("version", mcpserver.ServerVersion).Msg("Starting MCP server on stdio")
				return mcpserver.NewMCPServer(a.svc).Start(cmd.Context())
			})
		},
	}
}

func serveHTTPCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-http",
		Short: "Serve the generator operations as a REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if addr == "" {
					addr = a.cfg.Server.Addr
				}
				return api.NewServer(a.svc).ListenAndServe(cmd.Context(), addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8090)")

	return cmd
}

func clientCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "client",
		Short: "Interactive client for the generator tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ctx := cmd.Context()

				c, err := client.NewInProcessClient(mcpserver.NewMCPServer(a.svc).Server())
				if err != nil {
					return fmt.Errorf("failed to create MCP client: %w", err)
				}
				defer c.Close()

				if err := c.Start(ctx); err != nil {
					return fmt.Errorf("failed to start MCP client: %w", err)
				}
				if _, err := c.Initialize(ctx, mcp.InitializeRequest{
					Params: mcp.InitializeParams{
						ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
						ClientInfo:      mcp.Implementation{Name: "api-testcase-generator-client", Version: version},
					},
				}); err != nil {
					return fmt.Errorf("failed to initialize MCP session: %w", err)
				}

				return repl.New(c, cmd.OutOrStdout()).Run(ctx)
			})
		},
	}
}
