package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/config"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/core"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/enrich"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/localip"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/logging"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/scryfall"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/store"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_driver", cfg.Store.Driver,
		"enrich_concurrency", cfg.Enrich.Concurrency,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
	)

	ctx := context.Background()
	st, err := store.Open(ctx, store.Options{
		Driver:          cfg.Store.Driver,
		PostgresURL:     cfg.Store.URL,
		MaxConns:        cfg.Store.MaxConns,
		MinConns:        cfg.Store.MinConns,
		MaxConnLifetime: cfg.Store.MaxConnLifetime,
		MaxConnIdleTime: cfg.Store.MaxConnIdleTime,
		SQLitePath:      cfg.Store.SQLitePath,
		PebblePath:      cfg.Store.PebblePath,
	})
	if err != nil {
		slog.Error("failed to open list store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("list store ready", "driver", cfg.Store.Driver)

	catalog := scryfall.NewClient(scryfall.Options{
		BaseURL:    cfg.Catalog.BaseURL,
		Timeout:    cfg.Catalog.Timeout,
		RPS:        cfg.Catalog.RPS,
		MaxRetries: cfg.Catalog.MaxRetries,
	})
	enricher := enrich.New(catalog, cfg.Enrich.Concurrency)

	service := core.NewService(st, enricher, cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	resolver := localip.New(cfg.Share.FallbackIP)
	server := web.NewServer(service, resolver, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if status := service.UploadLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
