package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/guide/internal/cli"
	httpAdapter "github.com/aretw0/guide/pkg/adapters/http"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [scenario]",
	Short: "Start the webhook HTTP server",
	Long: `Starts the dialogue supervisor behind a JSON API over HTTP. Sessions live in
memory and are evicted by the reaper; metrics are exposed on /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg, false)

		metrics := observability.NewMetrics()
		streams := httpAdapter.NewStreamManager(logger)

		opts := supervisorOptions(cfg)
		opts.Hooks = domain.CombineHooks(metrics.Hooks(), observability.LogHooks(logger), streams.Hooks())

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		sup, err := cli.NewSupervisor(ctx, opts, logger)
		if err != nil {
			return err
		}

		reaperDone := make(chan error, 1)
		go func() {
			reaperDone <- sup.Run(ctx)
		}()

		srv := &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.Port),
			Handler: httpAdapter.NewHandler(sup,
				httpAdapter.WithStreams(streams),
				httpAdapter.WithMetrics(metrics.Handler()),
				httpAdapter.WithLogger(logger),
			),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting Guide Server", "address", srv.Addr, "scenario", cfg.Scenario)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			ctx.Cancel()
			<-reaperDone
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown", "signal", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "err", err)
				}
			}
			<-reaperDone
			logger.Info("Guide Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringSlice("actions", nil, "Action names to register with echo handlers (default: every referenced action)")
}
