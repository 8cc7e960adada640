// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"log/slog"
	"time"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when non-empty.
	// Example: redis://localhost:6379/0
	RedisURL string

	// Prefix is the key prefix for Redis
	Prefix string

	// DefaultTTL is the default TTL for cache entries
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for memory cache (0 = unlimited)
	MaxSize int

	// CleanupInterval is the interval for expired entry cleanup
	CleanupInterval time.Duration

	// MaxValueSize caps a single Redis payload (0 = unlimited)
	MaxValueSize int64
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		Prefix:          "watesa:",
		DefaultTTL:      time.Hour,
		MaxSize:         256,
		CleanupInterval: time.Minute,
	}
}

// New creates a cache based on the provided configuration. A Redis URL
// selects the Redis backend; otherwise an in-memory cache is returned.
func New(cfg Config, logger *slog.Logger) (Cache, error) {
	if cfg.RedisURL != "" {
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		opts.MaxValueSize = cfg.MaxValueSize
		rc, err := NewRedisCache(opts)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis cache: %w", err)
		}
		if logger != nil {
			logger.Info("using redis cache", "prefix", opts.Prefix, "max_value_size", opts.MaxValueSize)
		}
		return rc, nil
	}

	if logger != nil {
		logger.Info("using memory cache", "max_size", cfg.MaxSize)
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	}), nil
}
