package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"aulas/internal/backend"
	"aulas/internal/cache"
	"aulas/internal/cli"
	apphttp "aulas/internal/http"
	"aulas/internal/log"
	"aulas/internal/report"
	"aulas/internal/services"
)

const (
	shutdownTimeout      = 30 * time.Second
	cacheCleanupInterval = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := cli.LoadEnvFile(); err != nil {
		return err
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		return err
	}

	opts := append([]services.Option{services.WithLogger(logger)}, res.LedgerOptions()...)
	ledger, err := services.OpenLedger(ctx, res.Store, opts...)
	if err != nil {
		if cerr := res.Cleanup(); cerr != nil {
			logger.Warn("Cleanup after failed start", log.FieldError, cerr)
		}
		return err
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("Failed to close ledger", log.FieldError, err)
		}
	}()

	reports := report.NewService(report.NewGenerator(ledger.Roster(), ledger.Schedule()), report.ServiceConfig{
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,
		Revision:  ledger.Revision,
		Logger:    logger,
	})
	caches := cache.NewManager()
	if c := reports.Cache(); c != nil {
		caches.Register(c)
		caches.StartCleanup(cacheCleanupInterval)
	}
	defer caches.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, ledger, reports, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting aulas server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events_configured", cfg.EventsEnabled(),
			"events", res.Events != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
