package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"finanzas/internal/api"
	"finanzas/internal/cli"
	apphttp "finanzas/internal/http"
	"finanzas/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg)

	ctx, stop := cli.SignalContext()
	defer stop()

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open ledger backend", log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Ledger cleanup failed", log.FieldError, err)
		}
	}()
	svc := res.Service

	gin.SetMode(cfg.GinMode)

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		API:                api.NewRouter(svc, logger),
		Ready:              svc.Ready,
	})
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting finanzas web server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events_enabled", svc.EventsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down web server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
