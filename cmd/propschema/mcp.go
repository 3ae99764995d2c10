package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/propschema"
	"github.com/aretw0/propschema/pkg/adapters/mcp"
	"github.com/aretw0/propschema/pkg/observability"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes the catalog to AI agents as MCP tools: validate_properties,
apply_defaults, transform_properties, list_schemas and describe_schema.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("transport") {
				a.cfg.MCP.Transport = transport
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.MCP.Addr = addr
			}

			c, err := a.loadCatalog(propschema.WithHooks(observability.LogHooks(a.logger)))
			if err != nil {
				return err
			}
			srv := mcp.NewServer(c, propschema.Version, mcp.WithLogger(a.logger))

			switch a.cfg.MCP.Transport {
			case "stdio", "":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				a.logger.Info("Starting propschema MCP server (stdio)", "schemas", c.Len())
				return srv.ServeStdio()
			case "sse":
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				err := srv.ServeSSE(ctx, a.cfg.MCP.Addr, baseURL(a.cfg.MCP.Addr))
				if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
					return err
				}
				a.logger.Info("MCP server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", a.cfg.MCP.Transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "Transport protocol to use: 'stdio' or 'sse' (overrides mcp.transport)")
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on, only for SSE (overrides mcp.addr)")
	return cmd
}

// baseURL turns a listen address such as ":8081" into the URL clients reach.
func baseURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
