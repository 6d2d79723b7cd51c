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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ochtii/wannfahrma-v1/internal/config"
	"github.com/ochtii/wannfahrma-v1/internal/logging"
	"github.com/ochtii/wannfahrma-v1/internal/relay"
)

func main() {
	// Load .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := relay.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout)
	handler := relay.NewHandler(client, logger)

	// The write timeout leaves room for one full upstream call
	srv := &http.Server{
		Addr:         cfg.RelayAddr(),
		Handler:      handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("relay starting",
			zap.String("addr", srv.Addr),
			zap.String("upstream", cfg.UpstreamURL),
			zap.Duration("upstream_timeout", cfg.UpstreamTimeout),
		)
		logger.Info("usage: GET /monitor?rbl=<boarding point id>")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("shutting down relay")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("relay stopped")
}
