// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/cache"
	"github.com/olegiv/watesa-go/internal/imaging"
	"github.com/olegiv/watesa-go/internal/metrics"
	"github.com/olegiv/watesa-go/internal/model"
	"github.com/olegiv/watesa-go/internal/youtube"
)

// Upload is an accepted image upload: its declared MIME type starts with
// image/ and its size is within the limit.
type Upload struct {
	Data        []byte
	ContentType string
}

// ContentDeps are the collaborators shared by the article and product services.
type ContentDeps struct {
	DB         *sql.DB
	Processor  *imaging.Processor
	ImageCache *cache.ImageCache // nil disables caching
	Logger     *slog.Logger
	Now        Clock // nil means time.Now
}

type contentBase struct {
	kind   model.ContentKind
	db     *sql.DB
	proc   *imaging.Processor
	images *cache.ImageCache
	logger *slog.Logger
	now    Clock
}

func newContentBase(kind model.ContentKind, deps ContentDeps) contentBase {
	b := contentBase{
		kind:   kind,
		db:     deps.DB,
		proc:   deps.Processor,
		images: deps.ImageCache,
		logger: deps.Logger,
		now:    deps.Now,
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.proc == nil {
		b.proc = imaging.NewProcessor(imaging.DefaultProfiles())
	}
	return b
}

// timestamp returns the current time at storage resolution.
func (b *contentBase) timestamp() time.Time {
	return b.now().UTC().Truncate(time.Millisecond)
}

// processUpload runs the image pipeline. A nil upload yields a nil image.
func (b *contentBase) processUpload(up *Upload) (*model.Image, error) {
	if up == nil {
		return nil, nil
	}
	start := time.Now()
	res, err := b.proc.ProcessFor(b.kind, up.Data)
	if err != nil {
		metrics.ObserveImageProcess(string(b.kind), metrics.ResultError, time.Since(start))
		b.logger.Warn("image processing failed",
			"kind", b.kind, "declared_type", up.ContentType, "size", len(up.Data), "error", err)
		return nil, apperror.Wrap(apperror.ImageProcessingFailed, apperror.MsgImageProcessingFailed, err)
	}
	metrics.ObserveImageProcess(string(b.kind), metrics.ResultOK, time.Since(start))
	b.logger.Debug("image processed",
		"kind", b.kind, "width", res.Width, "height", res.Height, "bytes", len(res.Data))
	img := res.Image
	return &img, nil
}

// cachedImage serves an image from the cache, falling back to load and
// filling the cache on success. A cached entry is served only while its
// UpdatedAt equals the row's updated_at as reported by version; a fill
// that raced an update is dropped on the next read.
func (b *contentBase) cachedImage(ctx context.Context, id string,
	version func() (time.Time, error), load func() (model.StoredImage, error)) (model.StoredImage, error) {
	if img, ok := b.images.Get(ctx, b.kind, id); ok {
		current, err := version()
		switch {
		case err == nil && current.Equal(img.UpdatedAt):
			metrics.ObserveImageCache(string(b.kind), true)
			return img, nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return model.StoredImage{}, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
		}
		b.logger.Debug("dropping stale cached image",
			"kind", b.kind, "id", id, "cached_updated_at", img.UpdatedAt)
		b.images.Invalidate(ctx, b.kind, id)
	}
	if b.images != nil {
		metrics.ObserveImageCache(string(b.kind), false)
	}

	img, err := load()
	if err != nil {
		return model.StoredImage{}, err
	}
	if !img.Valid() {
		return model.StoredImage{}, apperror.New(apperror.NotFound, apperror.MsgImageNotFound)
	}
	b.images.Set(ctx, b.kind, id, img)
	return img, nil
}

func (b *contentBase) invalidateImage(ctx context.Context, id string) {
	b.images.Invalidate(ctx, b.kind, id)
}

// applyImage performs the resolved image action with the given setters.
func applyImage(update model.ImageUpdate, set func(model.Image) error, clear func() error) error {
	switch update.Action {
	case model.ImageReplace:
		return set(update.Image)
	case model.ImageRemove:
		return clear()
	default:
		return nil
	}
}

// patchText returns the trimmed patch value when it is present and not
// blank, otherwise current.
func patchText(f model.Field[string], current string, trim bool) string {
	v, ok := f.Get()
	if !ok || strings.TrimSpace(v) == "" {
		return current
	}
	if trim {
		return strings.TrimSpace(v)
	}
	return v
}

// patchVideoID applies a youtubeVideoId patch. Present and empty clears it.
func patchVideoID(f model.Field[string], current string) string {
	v, ok := f.Get()
	if !ok {
		return current
	}
	return youtube.ExtractID(v)
}

// blankToEmpty makes whitespace-only input fail required checks.
func blankToEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
