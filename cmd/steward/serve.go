package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/cli"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/pkg/adapters/httpapi"
	"github.com/stewardhq/steward/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant over HTTP",
	Long: `Starts the JSON HTTP API: POST /turn, POST /confirm, GET /schema,
GET /healthz and GET /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		listen, _ := cmd.Flags().GetString("listen")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		if listen != "" {
			cfg.HTTP.Listen = listen
		}

		logger := cli.NewLogger(cfg.Log.Level, debug)
		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

		assistant, err := cli.BuildAssistant(cfg, logger, metrics)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize assistant: %v\n", err)
			os.Exit(1)
		}

		handler := httpapi.NewHandler(assistant, httpapi.WithLogger(logger))
		server := &http.Server{
			Addr:    cfg.HTTP.Listen,
			Handler: handler,
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "address", cfg.HTTP.Listen)
			serverErrors <- server.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server failed", "err", err)
				os.Exit(1)
			}
		case <-sigCtx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown failed", "err", err)
				os.Exit(1)
			}
			logger.Info("server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Listen address (overrides config)")
}
