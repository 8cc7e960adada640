// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/olegiv/watesa-go/internal/model"
)

// Cached layout: content type, a zero byte, the owner's updated_at as
// big-endian unix milliseconds, then the image bytes.
const (
	imageSeparator = 0
	modTimeBytes   = 8
)

// ImageCache caches processed image payloads keyed by content kind and id.
// Cache failures are logged and treated as misses.
type ImageCache struct {
	backend Cache
	ttl     time.Duration
	logger  *slog.Logger
}

// NewImageCache wraps a backend. A nil backend yields a cache that never hits.
func NewImageCache(backend Cache, ttl time.Duration, logger *slog.Logger) *ImageCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageCache{backend: backend, ttl: ttl, logger: logger}
}

// ImageKey returns the cache key for an entity's image.
func ImageKey(kind model.ContentKind, id string) string {
	return "image:" + string(kind) + ":" + id
}

// Get returns a cached image and whether it was found.
func (c *ImageCache) Get(ctx context.Context, kind model.ContentKind, id string) (model.StoredImage, bool) {
	if c == nil || c.backend == nil {
		return model.StoredImage{}, false
	}
	raw, err := c.backend.Get(ctx, ImageKey(kind, id))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("image cache get failed", "kind", kind, "id", id, "error", err)
		}
		return model.StoredImage{}, false
	}
	img, ok := decodeImage(raw)
	if !ok {
		_ = c.backend.Delete(ctx, ImageKey(kind, id))
		return model.StoredImage{}, false
	}
	return img, true
}

// Set stores an image. Invalid images are ignored.
func (c *ImageCache) Set(ctx context.Context, kind model.ContentKind, id string, img model.StoredImage) {
	if c == nil || c.backend == nil || !img.Valid() {
		return
	}
	err := c.backend.Set(ctx, ImageKey(kind, id), encodeImage(img), c.ttl)
	switch {
	case errors.Is(err, ErrValueTooLarge):
		c.logger.Debug("image too large to cache", "kind", kind, "id", id, "size", len(img.Data))
	case err != nil:
		c.logger.Warn("image cache set failed", "kind", kind, "id", id, "error", err)
	}
}

// Invalidate drops any cached image for the entity.
func (c *ImageCache) Invalidate(ctx context.Context, kind model.ContentKind, id string) {
	if c == nil || c.backend == nil {
		return
	}
	if err := c.backend.Delete(ctx, ImageKey(kind, id)); err != nil {
		c.logger.Warn("image cache invalidate failed", "kind", kind, "id", id, "error", err)
	}
}

func encodeImage(img model.StoredImage) []byte {
	buf := make([]byte, 0, len(img.ContentType)+1+modTimeBytes+len(img.Data))
	buf = append(buf, img.ContentType...)
	buf = append(buf, imageSeparator)
	buf = binary.BigEndian.AppendUint64(buf, uint64(img.UpdatedAt.UnixMilli()))
	return append(buf, img.Data...)
}

func decodeImage(raw []byte) (model.StoredImage, bool) {
	i := bytes.IndexByte(raw, imageSeparator)
	if i <= 0 || len(raw) <= i+1+modTimeBytes {
		return model.StoredImage{}, false
	}
	ms := int64(binary.BigEndian.Uint64(raw[i+1 : i+1+modTimeBytes]))
	return model.StoredImage{
		Image: model.Image{
			ContentType: string(raw[:i]),
			Data:        raw[i+1+modTimeBytes:],
		},
		UpdatedAt: time.UnixMilli(ms).UTC(),
	}, true
}
