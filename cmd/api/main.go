package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"reviewpromax/internal/app"
	"reviewpromax/internal/client"
	"reviewpromax/internal/logger"
	"reviewpromax/internal/server"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("init app", zap.Error(err))
	}
	defer a.Close()

	if cfg.Database.Driver == "sqlite" {
		// local development has no separate migration step
		if err := client.Migrate(a.DB); err != nil {
			log.Fatal("migrate database", zap.Error(err))
		}
	}

	srv := server.NewServer(server.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		ChatRatePerMin: cfg.Chat.RatePerMin,
	}, a.Services, log)

	serverAddr := cfg.HTTP.Address()
	log.Info("starting HTTP server", zap.String("address", serverAddr), zap.String("environment", cfg.Environment.Name))
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
}
