package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/docscout/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the lookup pipeline over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		slog.Info("docscout starting",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"mode", cfg.Server.Mode,
			"maxPages", cfg.Browser.MaxPages,
		)

		// ── 1. Browser and engines ──
		f, err := newFetchers(cfg)
		if err != nil {
			return fmt.Errorf("serve: start browser: %w", err)
		}
		defer f.Close()

		// ── 2. Router ──
		router := api.NewRouter(ctx, f.pages, newLookup(cfg, f), cfg, time.Now())

		// ── 3. HTTP server ──
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{Addr: addr, Handler: router}

		errc := make(chan error, 1)
		go func() {
			slog.Info("HTTP server listening", "addr", addr)
			errc <- srv.ListenAndServe()
		}()

		// ── 4. Graceful shutdown ──
		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		slog.Info("shutdown signal received")

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			slog.Error("HTTP server forced shutdown", "error", err)
		} else {
			slog.Info("HTTP server drained gracefully")
		}
		slog.Info("docscout stopped")
		return nil
	},
}
