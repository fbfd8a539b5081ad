package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goalkeeper/backend/internal/api/handler"
	"goalkeeper/backend/internal/app"
	"goalkeeper/backend/internal/config"
	"goalkeeper/backend/internal/logging"
)

func main() {
	log.Println("Starting GoalKeeper slump checker...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := logging.New("goalkeeper", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Dependencies
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// 2. Schema
	if err := a.Migrate(ctx); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	// 3. Routes
	h := handler.NewHandler(a.Engine, a.Storage, cfg.TriggerJWTSecret, logger)
	if cfg.TriggerJWTSecret == "" {
		logger.Warn("TRIGGER_JWT_SECRET not set, /check-slumps is unauthenticated")
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler.NewRouter(h, a.Registry),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   5 * time.Minute, // a run sends one email per contact
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
