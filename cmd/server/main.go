package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/graticard/internal/config"
	"github.com/JonMunkholm/graticard/internal/logging"
	"github.com/JonMunkholm/graticard/internal/pipeline"
	"github.com/JonMunkholm/graticard/internal/source"
	"github.com/JonMunkholm/graticard/internal/store"
	"github.com/JonMunkholm/graticard/internal/web"
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
	slog.Info("configuration loaded", "config", cfg.String())

	// Background work stops when ctx is cancelled on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	templates, closeStore, err := openTemplateStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open template store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	loader := source.NewLoader(source.Options{
		MaxFileSize: cfg.Source.MaxFileSize,
		Encoding:    cfg.Source.Encoding,
		Concurrency: cfg.Source.LoadConcurrency,
	}, slog.Default())

	sessions := pipeline.NewManager(pipeline.Options{Loader: loader}, cfg.Session.TTL)
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	slog.Info("source adapters registered", "extensions", source.Extensions())

	server := web.NewServer(ctx, cfg, sessions, templates, loader)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancel()

		shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer done()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openTemplateStore connects to PostgreSQL when a database URL is set and
// falls back to an in-memory store otherwise.
func openTemplateStore(ctx context.Context, cfg *config.Config) (store.TemplateStore, func(), error) {
	if !cfg.Database.Enabled() {
		slog.Info("no database configured, mapping templates are kept in memory")
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := store.Connect(ctx, cfg.Database.URL,
		int32(cfg.Database.MaxConns),
		int32(cfg.Database.MinConns),
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	)
	if err != nil {
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	pg := store.NewPGStore(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool.Close, nil
}
