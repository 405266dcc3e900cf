package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/harbor/pkg/adapters/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <flow>",
	Short: "Serve a flow over HTTP",
	Long:  `Exposes the flow as a JSON API (invoke, NDJSON stream, SSE events, threads) plus Prometheus metrics.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.HTTP.Addr = addr
		}

		art, topo, err := a.flow(args[0])
		if err != nil {
			return err
		}

		metrics := promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
		r := chi.NewRouter()
		if a.cfg.Metrics.Enabled && a.cfg.Metrics.Addr == "" {
			r.Handle("/metrics", metrics)
		}
		r.Mount("/", httpAdapter.NewHandler(art, topo,
			httpAdapter.WithThreads(a.store),
			httpAdapter.WithLogger(a.logger),
		))

		servers := []*http.Server{{Addr: a.cfg.HTTP.Addr, Handler: r}}
		if a.cfg.Metrics.Enabled && a.cfg.Metrics.Addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics)
			servers = append(servers, &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux})
		}

		// Channel to listen for errors coming from the listeners.
		serverErrors := make(chan error, len(servers))
		for _, srv := range servers {
			go func() {
				a.logger.Info("listening", "addr", srv.Addr, "graph", topo.Graph)
				serverErrors <- srv.ListenAndServe()
			}()
		}

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case sig := <-shutdown:
			a.logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, srv := range servers {
				if err := srv.Shutdown(ctx); err != nil {
					a.logger.Warn("graceful shutdown did not complete", "addr", srv.Addr, "err", err)
					_ = srv.Close()
				}
			}
			a.logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
