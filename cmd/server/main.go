package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tomiwa-dev/naijapulse/internal/config"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(getEnvOrDefault("CONFIG_FILE", "config.yaml"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.Server.Mode)

	a, err := newApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if a.redisErr != nil {
		slog.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", a.redisErr)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm ranking caches and keep them fresh in the background.
	go func() {
		if err := a.rankings.UpdateRankings(rootCtx); err != nil {
			slog.Error("Initial ranking update failed", "error", err)
		}
		a.rankings.WarmCache()
		a.rankings.StartAutoRefresh(rootCtx, cfg.Cache.RefreshInterval)
	}()

	// Daily cleanup of sessions past the retention window.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if _, err := a.privacy.CleanupExpired(); err != nil {
					slog.Error("Session cleanup failed", "error", err)
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: a.router(),
	}

	go func() {
		slog.Info("Starting server", "addr", cfg.Addr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-rootCtx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
