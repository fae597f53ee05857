package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bakerybot/internal/app"
	"bakerybot/internal/config"
	"bakerybot/internal/handler"
	"bakerybot/internal/logger"
	"bakerybot/internal/router"
	"bakerybot/internal/service"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg.App.Environment, cfg.App.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting", "service", cfg.App.Name, "version", cfg.App.Version, "env", cfg.App.Environment)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", "error", err)
	}
	defer a.Close()

	poller := service.NewReminderPoller(a.Engine.Pending, service.LogNotifier{Log: log}, log, service.PollerConfig{
		Interval: cfg.Reminder.PollInterval,
	})
	poller.Start()

	healthHandler := handler.New(cfg.App.Name, cfg.App.Version, handler.ReadinessCheck{
		Name: "store",
		Check: func(ctx context.Context) error {
			_, err := a.Store.Stats(ctx)
			return err
		},
	})

	r := router.New(router.Config{
		Logger:           log,
		Handler:          healthHandler,
		MessageHandler:   handler.NewMessageHandler(a.Assistant),
		InventoryHandler: handler.NewInventoryHandler(a.Reporter),
		PendingHandler:   handler.NewPendingHandler(a.Engine),
		AdminHandler:     handler.NewAdminHandler(a.Store, a.Assistant, cfg.Store.Type, cfg.Cache.Type),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("server listening", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	poller.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	log.Info("server stopped")
}
