package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/router"
	"github.com/ljosc/discuss/internal/setup"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forum client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ephemeral, err := cmd.Flags().GetBool("ephemeral")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			deps, err := setup.SetupDependencies(cfg, ephemeral)
			if err != nil {
				return err
			}
			defer deps.Close()

			server := &http.Server{
				Addr:         cfg.Addr,
				Handler:      router.New(deps),
				ReadTimeout:  readTimeout,
				WriteTimeout: writeTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Log.Info("starting server", "component", "serve", "addr", server.Addr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Log.Info("shutting down", "component", "serve")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().Bool("ephemeral", false, "keep credentials in memory only")
	return cmd
}
