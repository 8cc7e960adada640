// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

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

	"github.com/olegiv/watesa-go/internal/auth"
	"github.com/olegiv/watesa-go/internal/cache"
	"github.com/olegiv/watesa-go/internal/chatbot"
	"github.com/olegiv/watesa-go/internal/config"
	"github.com/olegiv/watesa-go/internal/handler/api"
	"github.com/olegiv/watesa-go/internal/imaging"
	"github.com/olegiv/watesa-go/internal/logging"
	"github.com/olegiv/watesa-go/internal/mail"
	"github.com/olegiv/watesa-go/internal/metrics"
	"github.com/olegiv/watesa-go/internal/middleware"
	"github.com/olegiv/watesa-go/internal/model"
	"github.com/olegiv/watesa-go/internal/service"
	"github.com/olegiv/watesa-go/internal/store"
	"github.com/olegiv/watesa-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	createAdmin := flag.String("create-admin", "", "Create an admin or set its password, then exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "watesa - content and admin backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  JWT_SECRET             Session token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WATESA_DB_PATH         SQLite database path (default: ./data/watesa.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WATESA_SERVER_PORT     Server port (default: 5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WATESA_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  STATIC_ADMIN_EMAIL     Recipient of password reset emails\n")
		_, _ = fmt.Fprintf(os.Stderr, "  EMAIL_HOST             SMTP relay host\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FRONTEND_URL           Base URL of reset links (default: http://localhost:5173)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WATESA_REDIS_URL       Redis URL for the image cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY         Enables the chatbot route (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo, *createAdmin); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info, createAdmin string) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env, os.Stdout)
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
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

	ctx := context.Background()
	if createAdmin != "" {
		return runCreateAdmin(ctx, db, createAdmin, cfg.BcryptCost)
	}

	if cfg.SeedEnabled() {
		if err := store.SeedAdmin(ctx, db, cfg.SeedAdminUsername, cfg.SeedAdminPassword, cfg.BcryptCost); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}
	if n, err := store.New(db).CountAdmins(ctx); err == nil && n == 0 {
		slog.Warn("no admin exists; create one with -create-admin <username>")
	}

	backend, err := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTL,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
		MaxValueSize:    cfg.MaxUploadSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = backend.Close() }()

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)
	h := api.NewHandler(db, buildServices(cfg, db, issuer, backend, logger), api.Config{
		MaxUploadSize:    cfg.MaxUploadSize,
		ImageCacheMaxAge: cfg.ImageCacheMaxAge,
		ChatMaxHistory:   cfg.ChatbotMaxHistory,
		Version:          versionInfo.Version,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           newRouter(cfg, h, issuer),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// buildServices wires the business services from configuration.
func buildServices(cfg *config.Config, db *sql.DB, issuer *auth.TokenIssuer, backend cache.Cache, logger *slog.Logger) api.Services {
	mailer := mail.NewSMTPSender(mail.SMTPConfig{
		Host:        cfg.EmailHost,
		Port:        cfg.EmailPort,
		Username:    cfg.EmailUsername,
		Password:    cfg.EmailPassword,
		FromName:    cfg.EmailFromName,
		FromAddress: cfg.SenderAddress(),
	}, logger)
	if !cfg.MailConfigured() {
		slog.Warn("EMAIL_HOST is not set; password reset emails will fail")
	}

	deps := service.ContentDeps{
		DB: db,
		Processor: imaging.NewProcessor(imaging.Profiles{
			model.KindArticle: {MaxWidth: cfg.ArticleImageMaxWidth, Quality: cfg.ArticleImageQuality},
			model.KindProduct: {MaxWidth: cfg.ProductImageMaxWidth, Quality: cfg.ProductImageQuality},
		}),
		ImageCache: cache.NewImageCache(backend, cfg.CacheTTL, logger),
		Logger:     logger,
	}

	var replier chatbot.Replier
	if cfg.ChatbotEnabled() {
		replier = chatbot.NewOpenAIReplier(chatbot.Config{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Model:        cfg.ChatbotModel,
			SystemPrompt: cfg.ChatbotPrompt,
			MaxHistory:   cfg.ChatbotMaxHistory,
		})
		slog.Info("chatbot enabled", "model", cfg.ChatbotModel)
	}

	return api.Services{
		Auth: service.NewAuthService(db, issuer, mailer, service.AuthConfig{
			BcryptCost:     cfg.BcryptCost,
			ResetTokenTTL:  cfg.ResetTokenTTL,
			FrontendURL:    cfg.FrontendURL,
			ResetRecipient: cfg.StaticAdminEmail,
		}, logger),
		Articles: service.NewArticleService(deps),
		Products: service.NewProductService(deps),
		Chat:     service.NewChatService(replier, logger),
	}
}

// newRouter builds the HTTP router with the global middleware stack.
func newRouter(cfg *config.Config, h *api.Handler, verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.HTTPMetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.LimitBody(cfg.MaxUploadSize))

	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		h.Mount(r, verifier)
	})

	return r
}
