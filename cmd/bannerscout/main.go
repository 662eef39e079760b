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

	"github.com/use-agent/bannerscout/api"
	"github.com/use-agent/bannerscout/cache"
	"github.com/use-agent/bannerscout/config"
	"github.com/use-agent/bannerscout/fetcher"
	"github.com/use-agent/bannerscout/runner"
	"github.com/use-agent/bannerscout/session"
	"github.com/use-agent/bannerscout/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("bannerscout starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"worker", cfg.Worker.Command,
		"maxWorkers", cfg.Worker.MaxConcurrent,
		"proxy", cfg.Proxy.Configured(),
	)

	// ── 3. Session registry and worker runner ───────────────────────
	registry := session.NewRegistry(session.Options{
		TTL:           cfg.Session.TTL,
		SweepInterval: cfg.Session.SweepInterval,
		MaxSessions:   cfg.Session.MaxSessions,
	})
	defer registry.Close()

	notifier := webhook.NewNotifier()
	run := runner.New(runner.Config{
		Command:       cfg.Worker.Command,
		Args:          cfg.Worker.Args,
		Dir:           cfg.Worker.Dir,
		Timeout:       cfg.Worker.Timeout,
		MaxConcurrent: cfg.Worker.MaxConcurrent,
	}, registry, notifier)

	// ── 4. Image downloads ──────────────────────────────────────────
	downloads := cache.New[*fetcher.Resource](cfg.Fetch.CacheEntries, cfg.Fetch.CacheTTL, time.Minute)
	defer downloads.Close()

	images := fetcher.New(
		fetcher.NewDirectStrategy(nil),
		fetcher.NewProxyStrategy(cfg.Proxy),
		cfg.Fetch.Timeout,
		downloads,
	)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(cfg, api.Services{
		Scrapes:  run,
		Sessions: registry,
		Images:   images,
		Workers:  run,
	}, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// Running workers are killed; their sessions fail and webhooks fire.
	workerCtx, workerCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer workerCancel()
	if err := run.Shutdown(workerCtx); err != nil {
		slog.Error("workers did not exit in time", "error", err)
	}
	notifier.Wait()

	slog.Info("bannerscout stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
