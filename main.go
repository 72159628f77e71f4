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

	"go.uber.org/zap"

	"github.com/dnounce/dnounce-api/api/handlers"
	"github.com/dnounce/dnounce-api/config"
)

const shutdownTimeout = 20 * time.Second

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//initialize database, workers and router
	if err := a.Initialize(ctx); err != nil {
		zap.S().Fatalw("failed to initialize dnounce-api", "error", err)
	}

	port := a.Config.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.S().Infow("dnounce-api is up and running",
			"port", port,
			"url", a.Config.BaseURL,
			"lifecycleScheduling", a.Config.LifecycleScheduling,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("http server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	zap.S().Info("shutting down dnounce-api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("http server shutdown failed", "error", err)
	}
	if err := a.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("shutdown failed", "error", err)
	}
	_ = zap.L().Sync()
}
