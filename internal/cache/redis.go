// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores processed image payloads as raw Redis strings.
// Reads refresh the entry's TTL, so frequently served images stay resident
// while cold ones expire. Values above MaxValueSize are refused instead of
// pinning large blobs in a shared server.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	maxValue   int64
	closed     atomic.Bool
}

// RedisCacheOptions configures the Redis cache.
type RedisCacheOptions struct {
	URL        string        // Example: redis://localhost:6379/0
	Prefix     string        // Prepended to every key, e.g. "watesa:"
	DefaultTTL time.Duration // Also the sliding window refreshed on each hit

	// MaxValueSize is the largest payload accepted by Set (0 = unlimited).
	MaxValueSize int64

	DialTimeout time.Duration
	OpTimeout   time.Duration // Read and write timeout per command
}

// DefaultRedisCacheOptions returns the options used by New.
func DefaultRedisCacheOptions() RedisCacheOptions {
	return RedisCacheOptions{
		Prefix:      "watesa:",
		DefaultTTL:  time.Hour,
		DialTimeout: 5 * time.Second,
		OpTimeout:   3 * time.Second,
	}
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(opts RedisCacheOptions) (*RedisCache, error) {
	if opts.URL == "" {
		return nil, errors.New("redis URL is required")
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	if opts.DialTimeout > 0 {
		redisOpts.DialTimeout = opts.DialTimeout
	}
	if opts.OpTimeout > 0 {
		redisOpts.ReadTimeout = opts.OpTimeout
		redisOpts.WriteTimeout = opts.OpTimeout
	}

	c := newRedisCache(redis.NewClient(redisOpts), opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpts.DialTimeout)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return c, nil
}

func newRedisCache(client *redis.Client, opts RedisCacheOptions) *RedisCache {
	return &RedisCache{
		client:     client,
		prefix:     opts.Prefix,
		defaultTTL: opts.DefaultTTL,
		maxValue:   opts.MaxValueSize,
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Get returns the payload and extends its TTL to the default.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	var cmd *redis.StringCmd
	if c.defaultTTL > 0 {
		cmd = c.client.GetEx(ctx, c.key(key), c.defaultTTL)
	} else {
		cmd = c.client.Get(ctx, c.key(key))
	}
	val, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

// Set stores a payload. A zero TTL uses the default TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if c.maxValue > 0 && int64(len(value)) > c.maxValue {
		return ErrValueTooLarge
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a key. UNLINK frees large payloads off the server's main thread.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.client.Unlink(ctx, c.key(key)).Err()
}

// Clear removes every key under the prefix using SCAN, never KEYS.
func (c *RedisCache) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Unlink(ctx, batch...).Err()
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		return c.client.Close()
	}
	return nil
}

// Ping checks if the Redis connection is healthy.
func (c *RedisCache) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.client.Ping(ctx).Err()
}

var _ Cache = (*RedisCache)(nil)
