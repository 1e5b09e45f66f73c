package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/Tantanok221/douren/internal/authz"
	"github.com/Tantanok221/douren/internal/cache"
	"github.com/Tantanok221/douren/internal/config"
	"github.com/Tantanok221/douren/internal/handler"
	"github.com/Tantanok221/douren/internal/imagecdn"
	"github.com/Tantanok221/douren/internal/middleware"
	"github.com/Tantanok221/douren/internal/ratelimit"
	"github.com/Tantanok221/douren/internal/scheduler"
	"github.com/Tantanok221/douren/internal/session"
	"github.com/Tantanok221/douren/internal/store"
)

// Version information, injected at build time via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "douren - convention artist directory backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DOUREN_DB_PATH             SQLite database path (default: ./data/douren.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DOUREN_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DOUREN_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DOUREN_BRANCH              Deployment branch override for preview auth\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DOUREN_PREVIEW_USER/PASS   Basic-auth credentials for stg/pr-* branches\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DOUREN_IMAGE_CDN_TOKEN     Bearer token for the image host\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DOUREN_REDIS_URL           Redis URL for the shared role cache (optional)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("douren %s (commit: %s)\n", appVersion, appGitCommit)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	var logHandler slog.Handler
	if cfg.IsDevelopment() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	queries := store.New(db)

	// Role cache backend: Redis when multiple API processes share role
	// state, in-process memory otherwise.
	var roleBackend cache.Cache
	if cfg.UseRedisCache() {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.CachePrefix)
		if err != nil {
			slog.Warn("redis unavailable, using memory role cache", "error", err)
			roleBackend = cache.NewMemoryCache()
		} else {
			slog.Info("role cache backend", "backend", "redis")
			roleBackend = redisCache
		}
	} else {
		slog.Info("role cache backend", "backend", "memory")
		roleBackend = cache.NewMemoryCache()
	}
	defer func() { _ = roleBackend.Close() }()

	roleCache := authz.NewRoleCache(roleBackend)
	guard := authz.NewGuard(queries, roleCache)

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	var images *imagecdn.Client
	if cfg.ImageCDNToken != "" {
		images = imagecdn.New(cfg.ImageCDNEndpoint, cfg.ImageCDNToken)
	} else {
		slog.Warn("image host token not configured, uploads disabled")
	}

	apiLimiter := ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMax, nil)
	loginLimit := middleware.NewLoginProtection(0.5, 5)

	sched := scheduler.New(queries, apiLimiter, loginLimit, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	h := handler.New(db, queries, guard, sessionManager, images, loginLimit)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	if cfg.PreviewAuthConfigured() {
		r.Use(middleware.PreviewAuth(middleware.PreviewAuthConfig{
			BranchOverride: cfg.BranchOverride,
			Username:       cfg.PreviewUser,
			Password:       cfg.PreviewPass,
		}))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.RateLimit(apiLimiter))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, queries))

	h.Routes(r)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
