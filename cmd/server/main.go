package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskdesk/internal/api"
	"taskdesk/internal/config"
	"taskdesk/internal/db"
	"taskdesk/internal/notify"
	"taskdesk/pkg/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("open task store", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	bus := task.NewBus(store)
	metrics := api.NewMetrics()
	go metrics.CountChanges(ctx, bus.Subscribe())

	if cfg.NATSURL != "" {
		nc, err := notify.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("nats", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
		pub := notify.NewNATSPublisher(nc, cfg.NATSSubject, logger)
		go pub.Run(ctx, bus.Subscribe())
		logger.Info("publishing task changes", "subject", cfg.NATSSubject+".*")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.New(bus, logger, metrics),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("task server listening", "addr", srv.Addr, "driver", cfg.DBDriver, "env", cfg.Env)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}
}
