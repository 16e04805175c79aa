// msxtube is a YouTube search backend for the MSX media-menu client.
//
// Scrapes YouTube search results, shapes them into MSX card pages and
// persists favorites/watch history in Postgres or a local SQLite file.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/joho/godotenv"

	"msxtube/internal/engine"
	"msxtube/internal/server"
	"msxtube/internal/store"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("loading .env", slog.Any("error", err))
	}

	cfg := loadConfig()

	slog.Info("starting msxtube",
		slog.String("version", version),
		slog.String("port", cfg.Port),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	cancel()
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	fetcher := engine.NewFetcher(cfg)
	srv := server.New(cfg, st, fetcher)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("shutting down", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown", slog.Any("error", err))
		}
	}
}

func loadConfig() engine.Config {
	cfg := engine.Config{
		Port:           env.Str("PORT", "5000"),
		BaseURL:        env.Str("BASE_URL", ""),
		DatabaseURL:    env.Str("DATABASE_URL", ""),
		SQLitePath:     env.Str("SQLITE_PATH", ""),
		AllowedOrigins: env.List("ALLOWED_ORIGINS", "*"),
		MaxResults:     env.Int("MAX_RESULTS", 20),
		PageSize:       env.Int("PAGE_SIZE", 8),
		HistoryLimit:   env.Int("HISTORY_LIMIT", 50),
		FetchTimeout:   env.Duration("FETCH_TIMEOUT", 10*time.Second),
		FetchRate:      env.Float("FETCH_RATE", 2),
		FetchBurst:     env.Int("FETCH_BURST", 4),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	// Browser-fingerprint client for the scrape upstream; plain HTTP on failure.
	if env.Str("STEALTH_FETCH", "1") != "0" {
		bc, err := stealth.NewClient(stealth.WithTimeout(int(cfg.FetchTimeout.Seconds())))
		if err != nil {
			slog.Warn("stealth client init failed, using plain HTTP", slog.Any("error", err))
		} else {
			cfg.BrowserClient = bc
			slog.Info("stealth browser client initialized")
		}
	}
	return cfg
}
