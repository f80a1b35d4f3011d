package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caretcaret/aurora/internal/api"
	"github.com/caretcaret/aurora/internal/cache"
	"github.com/caretcaret/aurora/internal/config"
	"github.com/caretcaret/aurora/internal/crawler"
	"github.com/caretcaret/aurora/internal/diag"
	"github.com/caretcaret/aurora/internal/hooktheory"
	"github.com/caretcaret/aurora/internal/pipeline"
	"github.com/caretcaret/aurora/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage.
	clips, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open clip store", "error", err)
		os.Exit(1)
	}
	pageCache, err := cache.Open(cfg.CacheDir, cfg.Fresh)
	if err != nil {
		log.Error("failed to open cache", "error", err)
		os.Exit(1)
	}

	// Initialize the crawler.
	client := hooktheory.NewClient(cfg.BaseURL, cfg.UserAgent, cfg.RequestTimeout)
	crawl := crawler.New(client, pageCache, clips, log, diag.Logger{Log: log}, cfg.FetchConcurrency)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, clips, crawl, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
		pageCache.Close()
		clips.Close()
	}()

	log.Info("starting aurora", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
