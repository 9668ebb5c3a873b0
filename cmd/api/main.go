package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-api/internal"
	"inventory-api/internal/auth"
	"inventory-api/internal/config"
	"inventory-api/internal/logging"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	dsn, err := cfg.Database.DSN()
	if err != nil {
		log.Fatalf("Database configuration error: %v", err)
	}

	db, err := internal.OpenDB(ctx, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Create the schema on startup; safe against an initialized store.
	if err := internal.InitSchema(ctx, db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	var verifier auth.Verifier
	if cfg.Auth.CredentialsFile != "" {
		verifier, err = auth.NewFirebaseVerifier(ctx, cfg.Auth.CredentialsFile)
		if err != nil {
			log.Fatalf("Failed to initialize token verifier: %v", err)
		}
		slog.Info("token verification via identity provider", "credentials", cfg.Auth.CredentialsFile)
	} else {
		verifier = auth.NewTokenManager(cfg.Auth.DevSecret, cfg.Auth.DevIssuer, cfg.Auth.DevAudience, cfg.Auth.DevExpiry)
		slog.Warn("using local development token verifier; do not run this in production")
	}

	srv := internal.NewServer(db, verifier, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router,
	}

	go func() {
		slog.Info("inventory api listening", "addr", cfg.ListenAddr, "metrics", cfg.MetricsEnabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
