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

	"protekt/internal/platform/config"
	"protekt/internal/platform/httpserver"
	"protekt/internal/platform/logger"
	"protekt/internal/platform/metrics"
)

// main wires the domain services and serves the operational endpoints. Domain
// operations are invoked in-process through the services held by app.
func main() {
	config.LoadDotEnv(".env.local", ".env")
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	a, err := buildApp(ctx, cfg, log, reg)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := httpserver.New(cfg.Server.Addr, httpserver.NewOpsRouter(metrics.Handler(reg), a.healthChecks()))
	go func() {
		log.Info("starting protekt", "addr", cfg.Server.Addr, "env", cfg.Env, "storage", a.backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
