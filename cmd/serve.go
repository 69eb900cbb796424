package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/heritage-bijoux/appraiser/internal/config"
	"github.com/heritage-bijoux/appraiser/internal/handlers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API for an editing session",
		Long: `Starts the Appraiser HTTP API on the configured address.

The API drives a single editing session: upload photos, analyze them,
edit the draft, publish it and browse the archive.`,
		Example: `  # Start server on default address 0.0.0.0:8888
  appraiser serve

  # Start server on a custom address with a redis-backed archive
  appraiser serve --http-address :3000 --store-driver redis`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), appConfig)
			if err != nil {
				return err
			}
			defer a.Close()

			deps := handlers.Dependencies{
				Session:    a.newSession(),
				Normalizer: a.normalizer,
				Workers:    appConfig.ImageWorkers,
				Analyzer:   a.analysis,
				Archive:    a.archive,
			}
			if a.workflow != nil {
				deps.Publisher = a.workflow
			} else {
				slog.Warn("Shopify is not configured, publishing is disabled")
			}

			addr := appConfig.HTTPAddress
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.New(deps).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Appraiser API available", "addr", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().String("http-address", config.NewViper().GetString("http.address"), "Address to listen on")
	if err := viper.BindPFlag("http.address", cmd.Flags().Lookup("http-address")); err != nil {
		panic(err)
	}

	return cmd
}
