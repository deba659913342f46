package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/geega-crm/internal/handlers"
	"github.com/senyabanana/geega-crm/internal/router"
	"github.com/senyabanana/geega-crm/internal/services"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// ServeCommand запускает HTTP-сервер.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server",
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"))
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, log, err := loadConfigAndLogger(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	tenderService := services.NewTenderService(app.tenders, app.sequence, log)
	exportService := services.NewExportService(app.tenders, log)
	referenceService := services.NewReferenceService(app.references, log)

	routes := router.InitRoutes(router.Handlers{
		Tender:    handlers.NewTenderHandler(tenderService, log, cfg.RequestTimeout),
		Export:    handlers.NewExportHandler(exportService, log, cfg.ExportTimeout),
		Reference: handlers.NewReferenceHandler(referenceService, log, cfg.RequestTimeout),
	}, log)

	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server is listening", zap.String("address", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ExportTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
