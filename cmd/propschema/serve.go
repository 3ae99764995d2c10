package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/propschema"
	httpAdapter "github.com/aretw0/propschema/internal/adapters/http"
	"github.com/aretw0/propschema/internal/presentation/tui"
	"github.com/aretw0/propschema/pkg/catalog"
	"github.com/aretw0/propschema/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		source  string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serves validation, defaulting and transformation as a JSON API over HTTP.

The catalog comes from the configured documents (--source files) or from a
catalog previously published with "catalog push" (--source store).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Addr = addr
			}
			if cmd.Flags().Changed("metrics") {
				a.cfg.Metrics.Enabled = metrics
			}

			var opts []httpAdapter.Option
			hooks := observability.LogHooks(a.logger)
			if a.cfg.Metrics.Enabled {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				m := observability.NewMetrics()
				m.MustRegister(reg)
				hooks = observability.Chain(hooks, m.Hooks())
				opts = append(opts, httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
			}

			c, err := a.sourceCatalog(cmd, source, propschema.WithHooks(hooks))
			if err != nil {
				return err
			}

			opts = append(opts, httpAdapter.WithLogger(a.logger), httpAdapter.WithVersion(propschema.Version))
			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr,
				Handler:           httpAdapter.NewHandler(c, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			if errOut := cmd.ErrOrStderr(); tui.IsTerminal(errOut) {
				tui.PrintBanner(errOut, tui.Profile(errOut))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, srv, a, c.Len())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (overrides http.addr)")
	cmd.Flags().StringVar(&source, "source", "files", "Catalog source: files or store")
	cmd.Flags().String("redis", "", "Redis address of the store (overrides redis.addr)")
	cmd.Flags().String("dir", "", "Directory store (overrides store.dir and redis)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose Prometheus metrics at /metrics")
	return cmd
}

// sourceCatalog loads the catalog from documents or from a catalog store.
func (a *app) sourceCatalog(cmd *cobra.Command, source string, opts ...propschema.Option) (*catalog.Catalog, error) {
	switch source {
	case "files":
		return a.loadCatalog(opts...)
	case "store":
		store, done, err := a.openStore(cmd)
		if err != nil {
			return nil, err
		}
		defer done()
		return catalog.FromStore(cmd.Context(), store, a.catalogOptions(opts...)...)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", source)
	}
}

func runServer(ctx context.Context, srv *http.Server, a *app, schemas int) error {
	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		a.logger.Info("Starting propschema server", "addr", srv.Addr, "schemas", schemas)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		a.logger.Info("Shutdown signal received")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Graceful shutdown did not complete", "err", err)
			if cerr := srv.Close(); cerr != nil && !errors.Is(cerr, http.ErrServerClosed) {
				return cerr
			}
		}
		a.logger.Info("Server stopped gracefully")
		return nil
	}
}
