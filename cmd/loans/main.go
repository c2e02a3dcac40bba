package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/loan-service/internal/auth"
	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/console"
	"github.com/Dan9191/loan-service/internal/handler"
	"github.com/Dan9191/loan-service/internal/integrations/cbr"
	"github.com/Dan9191/loan-service/internal/middleware"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/Dan9191/loan-service/internal/service"
	"github.com/sirupsen/logrus"
)

func main() {
	mode := flag.String("mode", "console", "run mode: console or http")
	flag.Parse()

	// Initialize logger
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	logger.Debugf("Loaded config: %s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := repository.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := repository.NewRepository(db)
	if err := repo.ApplyMigrations(); err != nil {
		logger.Fatalf("Failed to apply migrations: %v", err)
	}

	// Initialize layers
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.NewService(repo, logger, cfg, tokens)
	var rates handler.RateQuoter
	if cfg.CBREnabled {
		rates = cbr.NewCBRClient(cfg, logger)
	}

	switch *mode {
	case "console":
		if err := console.New(svc, rates, os.Stdin, os.Stdout, logger).Run(ctx); err != nil {
			logger.Errorf("Console session ended: %v", err)
		}
	case "http":
		serveHTTP(ctx, cfg, handler.NewHandler(svc, rates, logger), tokens, logger)
	default:
		logger.Fatalf("Unknown mode %q", *mode)
	}
}

func serveHTTP(ctx context.Context, cfg *config.Config, h *handler.Handler, tokens *auth.Tokens, logger *logrus.Logger) {
	limiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)
	r := handler.NewRouter(h, tokens, limiter, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
