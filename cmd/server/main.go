package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/app"
	"github.com/mamadbah2/butchershop/internal/config"
	"github.com/mamadbah2/butchershop/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(initCtx, *cfg, baseLogger)
	if err != nil {
		cancelInit()
		baseLogger.Fatal("failed to build application", zap.Error(err))
	}
	if err := application.Start(initCtx); err != nil {
		cancelInit()
		baseLogger.Fatal("failed to start application", zap.Error(err))
	}
	cancelInit()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      application.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := application.Stop(shutdownCtx); err != nil {
		baseLogger.Error("application shutdown failed", zap.Error(err))
	}
}
