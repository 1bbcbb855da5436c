package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/maltedev/amazon-authenticity-checker/internal/api"
	"github.com/maltedev/amazon-authenticity-checker/internal/browser"
	"github.com/maltedev/amazon-authenticity-checker/internal/cache"
	"github.com/maltedev/amazon-authenticity-checker/internal/config"
	"github.com/maltedev/amazon-authenticity-checker/internal/database"
	"github.com/maltedev/amazon-authenticity-checker/internal/fetcher"
	"github.com/maltedev/amazon-authenticity-checker/internal/parser"
	"github.com/maltedev/amazon-authenticity-checker/internal/scraper"
	"github.com/maltedev/amazon-authenticity-checker/internal/sentiment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cache is best-effort: a Redis that is down at startup means
	// cache-disabled mode, never a startup failure.
	var store cache.Store
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis not available, proceeding without cache", "error", err)
		} else {
			defer redisStore.Close()
			store = redisStore
		}
	}

	// Check history is optional in the same way.
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Warn("database not available, proceeding without history", "error", err)
			db = nil
		} else {
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				logger.Error("failed to ensure schema", "error", err)
				os.Exit(1)
			}
		}
	}

	renderer := browser.NewRenderer(&browser.Options{
		Headless:   cfg.Browser.Headless,
		Settle:     cfg.Browser.Settle,
		UserAgents: cfg.Browser.UserAgents,
	}, logger.With("component", "browser"))

	pageFetcher := fetcher.New(renderer, &fetcher.Options{
		Timeout: cfg.Fetcher.Timeout,
	}, logger.With("component", "fetcher"))

	amazonScraper := scraper.NewAmazonScraper(
		pageFetcher,
		parser.NewAmazonParser(logger.With("component", "parser")),
		sentiment.NewAnalyzer(nil),
		store,
		&scraper.Options{CacheTTL: cfg.Redis.TTL},
		logger.With("component", "scraper"),
	)

	handlers := api.NewHandlers(amazonScraper, db, store != nil, logger.With("component", "api"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", handlers.CheckProduct)
		r.Get("/history", handlers.History)
	})

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
