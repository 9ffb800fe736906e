package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pickpath/internal/api"
	"pickpath/internal/buildinfo"
	"pickpath/internal/config"
	"pickpath/internal/logging"
	"pickpath/internal/metrics"
	"pickpath/internal/webhooks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(logging.DefaultConfig("pickpath-api")).Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	logCfg := logging.DefaultConfig("pickpath-api")
	logCfg.Level = logging.LogLevel(cfg.LogLevel)
	logCfg.Environment = cfg.Environment
	logCfg.Version = buildinfo.Version
	log := logging.New(logCfg)
	log.SetDefault()

	metrics.RegisterDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	srvDeps, err := api.NewServer(initCtx, cfg, log)
	cancel()
	if err != nil {
		log.WithError(err).Error("failed to init server")
		os.Exit(1)
	}
	defer srvDeps.Close()

	if srvDeps.Hooks != nil {
		webhooks.NewWorker(srvDeps.Hooks, cfg.Webhooks.MaxAttempts).Start(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srvDeps.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API listening", "addr", cfg.Addr(), "postgres", cfg.DatabaseURL != "", "redis", cfg.RedisURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
