package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/progress-engine/internal/api"
	"github.com/terra-clan/progress-engine/internal/badges"
	"github.com/terra-clan/progress-engine/internal/cache"
	"github.com/terra-clan/progress-engine/internal/config"
	"github.com/terra-clan/progress-engine/internal/judge"
	"github.com/terra-clan/progress-engine/internal/leaderboard"
	"github.com/terra-clan/progress-engine/internal/scheduler"
	"github.com/terra-clan/progress-engine/internal/storage"
	"github.com/terra-clan/progress-engine/internal/sync"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting progress-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Redis is optional: without it leaderboards recompute on every
	// read and the sweep runs unlocked.
	var redisCache *cache.Cache
	if c, err := cache.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		slog.Warn("redis unavailable, continuing without cache", "error", err)
	} else {
		redisCache = c
		slog.Info("redis connected successfully")
	}

	// Badge catalog: YAML override or built-in defaults
	evaluator := badges.Default()
	if cfg.Badges.File != "" {
		loaded, err := badges.LoadFromFile(cfg.Badges.File)
		if err != nil {
			slog.Warn("failed to load badge catalog, using defaults", "file", cfg.Badges.File, "error", err)
		} else {
			evaluator = loaded
			slog.Info("loaded badge catalog", "file", cfg.Badges.File, "rules", evaluator.Len())
		}
	}

	// External judge client
	judgeClient := judge.NewHTTPClient(cfg.Judge.BaseURL, cfg.Judge.Timeout)

	// Sync orchestrator
	orchestrator := sync.NewOrchestrator(repo, judgeClient, evaluator, cfg.Judge.FeedLimit)

	// Leaderboard service
	leaderboards := leaderboard.NewService(repo, redisCache, 30*time.Second)

	// Create context with cancellation for background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the periodic sync sweep
	var locker scheduler.Locker
	if redisCache != nil {
		locker = redisCache
	}
	sweep := scheduler.New(repo, orchestrator, locker,
		cfg.Scheduler.Interval,
		cfg.Scheduler.BatchSize,
		cfg.Scheduler.StaleAfter,
	)
	sweep.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, repo, orchestrator, leaderboards)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("progress-engine stopped")
}
