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

	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/sheet-insights-api/internal/config"
	"github.com/BerylCAtieno/sheet-insights-api/internal/router"
	"github.com/BerylCAtieno/sheet-insights-api/internal/services"
	"github.com/BerylCAtieno/sheet-insights-api/internal/utils"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; analysis requests will fail until it is configured")
	}

	// Initialize analysis service
	analysisService, err := services.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize analysis service", "error", err)
	}

	// Setup HTTP router
	handler := router.NewRouter(analysisService, logger, cfg)

	// A request may wait on every retry of the model call.
	writeTimeout := time.Duration(cfg.RetryAttempts)*cfg.GeminiTimeout + time.Minute

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "model", cfg.GeminiModel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}
