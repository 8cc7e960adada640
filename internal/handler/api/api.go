// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers of the Watesa backend: admin
// authentication, the article and product collections with their images,
// the chatbot proxy and the health probe.
package api

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/olegiv/watesa-go/internal/service"
)

// Config holds the HTTP-level settings of the handlers.
type Config struct {
	MaxUploadSize    int64         // Largest accepted image part in bytes
	ImageCacheMaxAge time.Duration // Cache-Control max-age of image responses
	ChatMaxHistory   int
	Version          string
}

// Services are the business services behind the handlers. Chat may be a
// service without a replier, in which case the chatbot route answers 503.
type Services struct {
	Auth     *service.AuthService
	Articles *service.ArticleService
	Products *service.ProductService
	Chat     *service.ChatService
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db       *sql.DB
	auth     *service.AuthService
	articles *service.ArticleService
	products *service.ProductService
	chat     *service.ChatService
	cfg      Config
	logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, svcs Services, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 5 << 20
	}
	if cfg.ImageCacheMaxAge <= 0 {
		cfg.ImageCacheMaxAge = time.Hour
	}
	chat := svcs.Chat
	if chat == nil {
		chat = service.NewChatService(nil, logger)
	}
	return &Handler{
		db:       db,
		auth:     svcs.Auth,
		articles: svcs.Articles,
		products: svcs.Products,
		chat:     chat,
		cfg:      cfg,
		logger:   logger,
	}
}
