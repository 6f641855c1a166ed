/**
 * @description
 * This is the main entry point for smartbankd, the in-memory SmartBank API
 * dev server. It exists so the client can be developed and exercised against
 * the real wire contract without a deployed backend.
 */

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartbank/banking-client/internal/config"
	"github.com/smartbank/banking-client/internal/devserver"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		// Ephemeral secret: fine for a dev server, tokens die with the process.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate jwt secret", "error", err)
			os.Exit(1)
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn("JWT_SECRET not set; using an ephemeral secret")
	}

	srv := devserver.New(devserver.Config{
		JWTSecret: secret,
		TokenTTL:  time.Duration(cfg.TokenTTLMinutes) * time.Minute,
	}, logger)

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: srv.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("smartbankd listening", "port", cfg.ServerPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
