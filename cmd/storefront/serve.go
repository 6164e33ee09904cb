package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	html "github.com/gofiber/template/html/v2"
	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	logger, err := applog.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	applog.SetLogger(logger)
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	broker := openBroker(cfg.RabbitMQURL, log)
	defer broker.Close()

	deps, err := handlers.NewDeps(store, cfg, broker, log)
	if err != nil {
		return err
	}
	if err := deps.Menu.Load(ctx); err != nil {
		// keep serving; the menu page shows the offline notice
		if !errors.Is(err, services.ErrOffline) {
			return err
		}
		log.Warnw("starting with an empty menu", "error", err)
	}

	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(cfg.Env != "production")

	app := handlers.NewApp(deps, handlers.AppOptions{
		Views:     engine,
		AccessLog: os.Stdout,
	})

	errc := make(chan error, 1)
	go func() {
		log.Infow("listening", "port", cfg.Port, "store", cfg.Store.Driver)
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	if deps.Menu.HasUnsavedChanges() {
		log.Warnw("unpublished menu changes discarded")
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorw("shutdown failed", "error", err)
	}
	return nil
}
