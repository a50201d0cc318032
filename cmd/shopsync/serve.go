package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tenjam/shopsync/internal/config"
	"github.com/tenjam/shopsync/internal/core"
	"github.com/tenjam/shopsync/internal/logging"
	"github.com/tenjam/shopsync/internal/store"
	"github.com/tenjam/shopsync/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the import API server",
	Long: `Starts the HTTP server exposing the preview/confirm import endpoints and
the health probe. With DATABASE_URL set the server persists to PostgreSQL;
without it an in-memory backend is used.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	var backend core.Backend
	var pinger web.Pinger
	if cfg.Backend.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.Backend.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()
		backend, pinger = pg, pg
		slog.Info("using postgres backend")
	} else {
		backend = store.NewMemory()
		slog.Info("using in-memory backend", "note", "data is lost on shutdown")
	}

	service := core.NewService(backend, cfg.Import.SessionTTL)
	server := web.NewServer(service, web.Options{
		Pinger:         pinger,
		MaxContentSize: cfg.Import.MaxContentSize,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		slog.Info("import API listening", "addr", cfg.Addr())
		errCh <- server.Start(cfg.Addr(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
