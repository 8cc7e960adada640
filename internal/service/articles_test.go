// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/cache"
	"github.com/olegiv/watesa-go/internal/model"
	"github.com/olegiv/watesa-go/internal/store"
	"github.com/olegiv/watesa-go/internal/testutil"
)

const missingID = "0b7cf7a5-4d4e-4a5c-9b55-0d3c1e9f7a99"

var contentEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testContentDeps(t *testing.T, now Clock) ContentDeps {
	t.Helper()
	backend := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = backend.Close() })
	return ContentDeps{
		DB:         testutil.TestDB(t),
		ImageCache: cache.NewImageCache(backend, time.Minute, testutil.TestLogger()),
		Logger:     testutil.TestLogger(),
		Now:        now,
	}
}

func pngUpload(t *testing.T, w, h int) *Upload {
	t.Helper()
	return &Upload{Data: testutil.PNG(t, w, h), ContentType: "image/png"}
}

func decodeJPEG(t *testing.T, data []byte) image.Config {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg
}

func TestArticleCreate_WithImage(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, frozenClock(contentEpoch)))
	ctx := context.Background()

	article, err := svc.Create(ctx, model.ArticleInput{
		Title:          "  Panen Raya  ",
		Content:        "Isi artikel",
		YoutubeVideoID: "https://youtu.be/dQw4w9WgXcQ",
	}, pngUpload(t, 2000, 2000))
	require.NoError(t, err)

	assert.Equal(t, "Panen Raya", article.Title)
	assert.Equal(t, "dQw4w9WgXcQ", article.YoutubeVideoID)
	assert.True(t, article.Image.HasImage())
	assert.Equal(t, model.MimeTypeJPEG, article.Image.ContentType)
	assert.True(t, article.CreatedAt.Equal(contentEpoch))
	assert.True(t, article.UpdatedAt.Equal(contentEpoch))

	img, err := svc.Image(ctx, article.ID)
	require.NoError(t, err)
	cfg := decodeJPEG(t, img.Data)
	assert.LessOrEqual(t, cfg.Width, 800)
	assert.LessOrEqual(t, cfg.Height, 800)
	assert.True(t, img.UpdatedAt.Equal(contentEpoch))
}

func TestArticleCreate_Validation(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, nil))

	_, err := svc.Create(context.Background(), model.ArticleInput{Title: "   ", Content: "\n"}, nil)
	appErr := requireKind(t, err, apperror.ValidationFailed)
	assert.Equal(t, apperror.MsgArticleTitleRequired, appErr.Fields["title"])
	assert.Equal(t, apperror.MsgArticleContentRequired, appErr.Fields["content"])

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list, "a rejected create must not persist anything")
}

func TestArticleCreate_UndecodableImage(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, nil))

	_, err := svc.Create(context.Background(), model.ArticleInput{Title: "a", Content: "b"},
		&Upload{Data: []byte("not an image"), ContentType: "image/png"})
	requireKind(t, err, apperror.ImageProcessingFailed)
}

func TestArticleCreate_UnrecognizedVideoIsDropped(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, nil))

	article, err := svc.Create(context.Background(), model.ArticleInput{
		Title: "a", Content: "b", YoutubeVideoID: "https://vimeo.com/12345",
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, article.YoutubeVideoID)
	assert.False(t, article.Image.HasImage())
}

func TestArticleUpdate_Patch(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, stepClock(contentEpoch, time.Second)))
	ctx := context.Background()

	created, err := svc.Create(ctx, model.ArticleInput{
		Title: "Judul", Content: "Isi", YoutubeVideoID: "dQw4w9WgXcQ",
	}, nil)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, model.ArticlePatch{
		Title:   model.Set("  Judul Baru "),
		Content: model.Set("   "), // blank means unchanged
	}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "Judul Baru", updated.Title)
	assert.Equal(t, "Isi", updated.Content)
	assert.Equal(t, "dQw4w9WgXcQ", updated.YoutubeVideoID)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	cleared, err := svc.Update(ctx, created.ID, model.ArticlePatch{YoutubeVideoID: model.Set("")}, nil, false)
	require.NoError(t, err)
	assert.Empty(t, cleared.YoutubeVideoID)
}

func TestArticleUpdate_UpdatedAtStrictlyIncreases(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, frozenClock(contentEpoch)))
	ctx := context.Background()

	article, err := svc.Create(ctx, model.ArticleInput{Title: "a", Content: "b"}, nil)
	require.NoError(t, err)

	prev := article.UpdatedAt
	for i := 0; i < 3; i++ {
		article, err = svc.Update(ctx, article.ID, model.ArticlePatch{}, nil, false)
		require.NoError(t, err)
		assert.True(t, article.UpdatedAt.After(prev), "update %d: %v not after %v", i, article.UpdatedAt, prev)
		prev = article.UpdatedAt
	}
}

func TestArticleUpdate_ImagePrecedence(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, stepClock(contentEpoch, time.Second)))
	ctx := context.Background()

	article, err := svc.Create(ctx, model.ArticleInput{Title: "a", Content: "b"}, pngUpload(t, 40, 20))
	require.NoError(t, err)
	first, err := svc.Image(ctx, article.ID)
	require.NoError(t, err)

	// A new image wins over the removal flag.
	article, err = svc.Update(ctx, article.ID, model.ArticlePatch{}, pngUpload(t, 64, 64), true)
	require.NoError(t, err)
	assert.True(t, article.Image.HasImage())
	second, err := svc.Image(ctx, article.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Data, second.Data, "cached image must be invalidated on update")
	assert.Equal(t, 64, decodeJPEG(t, second.Data).Width)

	article, err = svc.Update(ctx, article.ID, model.ArticlePatch{}, nil, true)
	require.NoError(t, err)
	assert.False(t, article.Image.HasImage())
	_, err = svc.Image(ctx, article.ID)
	requireKind(t, err, apperror.NotFound)

	// Removing an absent image is not an error.
	article, err = svc.Update(ctx, article.ID, model.ArticlePatch{}, nil, true)
	require.NoError(t, err)
	assert.False(t, article.Image.HasImage())
}

func TestArticleUpdate_ProcessingFailureLeavesRecord(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, nil))
	ctx := context.Background()

	article, err := svc.Create(ctx, model.ArticleInput{Title: "a", Content: "b"}, nil)
	require.NoError(t, err)

	_, err = svc.Update(ctx, article.ID, model.ArticlePatch{Title: model.Set("c")},
		&Upload{Data: []byte("garbage"), ContentType: "image/jpeg"}, false)
	requireKind(t, err, apperror.ImageProcessingFailed)

	got, err := svc.Get(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
	assert.True(t, got.UpdatedAt.Equal(article.UpdatedAt))
}

func TestArticle_InvalidAndMissingIDs(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, nil))
	ctx := context.Background()

	appErr := requireKind(t, svc.Delete(ctx, "123"), apperror.InvalidID)
	assert.Equal(t, apperror.MsgArticleInvalidID, appErr.Message)
	_, err := svc.Get(ctx, "nope")
	requireKind(t, err, apperror.InvalidID)

	appErr = requireKind(t, svc.Delete(ctx, missingID), apperror.NotFound)
	assert.Equal(t, apperror.MsgArticleNotFound, appErr.Message)
	_, err = svc.Get(ctx, missingID)
	requireKind(t, err, apperror.NotFound)
	_, err = svc.Update(ctx, missingID, model.ArticlePatch{Title: model.Set("x")}, nil, false)
	requireKind(t, err, apperror.NotFound)
	_, err = svc.Image(ctx, missingID)
	requireKind(t, err, apperror.NotFound)
}

func TestArticle_ListAndDelete(t *testing.T) {
	svc := NewArticleService(testContentDeps(t, stepClock(contentEpoch, time.Minute)))
	ctx := context.Background()

	older, err := svc.Create(ctx, model.ArticleInput{Title: "lama", Content: "x"}, pngUpload(t, 10, 10))
	require.NoError(t, err)
	newer, err := svc.Create(ctx, model.ArticleInput{Title: "baru", Content: "y"}, nil)
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	// Warm the cache, then make sure delete evicts it.
	_, err = svc.Image(ctx, older.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, older.ID))
	_, err = svc.Image(ctx, older.ID)
	requireKind(t, err, apperror.NotFound)
	requireKind(t, svc.Delete(ctx, older.ID), apperror.NotFound)
}

func TestArticleImage_ServedFromCache(t *testing.T) {
	deps := testContentDeps(t, nil)
	svc := NewArticleService(deps)
	ctx := context.Background()

	article, err := svc.Create(ctx, model.ArticleInput{Title: "a", Content: "b"}, pngUpload(t, 10, 10))
	require.NoError(t, err)
	fromDB, err := svc.Image(ctx, article.ID)
	require.NoError(t, err)

	cached, ok := deps.ImageCache.Get(ctx, model.KindArticle, article.ID)
	require.True(t, ok, "first read should fill the cache")
	assert.Equal(t, fromDB.Data, cached.Data)

	// An entry whose version matches the row is served as is.
	marker := model.StoredImage{
		Image:     model.Image{Data: []byte("cached bytes"), ContentType: model.MimeTypeJPEG},
		UpdatedAt: fromDB.UpdatedAt,
	}
	deps.ImageCache.Set(ctx, model.KindArticle, article.ID, marker)
	again, err := svc.Image(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, marker.Data, again.Data)
}

func TestArticleImage_StaleFillAfterUpdate(t *testing.T) {
	deps := testContentDeps(t, stepClock(contentEpoch, time.Second))
	svc := NewArticleService(deps)
	ctx := context.Background()

	article, err := svc.Create(ctx, model.ArticleInput{Title: "a", Content: "b"}, pngUpload(t, 40, 40))
	require.NoError(t, err)

	// A reader loads the old image, then an update commits and invalidates
	// before the reader fills the cache.
	q := store.New(deps.DB)
	old, err := svc.cachedImage(ctx, article.ID, func() (time.Time, error) {
		return q.ArticleUpdatedAt(ctx, article.ID)
	}, func() (model.StoredImage, error) {
		img, err := q.GetArticleImage(ctx, article.ID)
		if err != nil {
			return model.StoredImage{}, err
		}
		_, err = svc.Update(ctx, article.ID, model.ArticlePatch{}, pngUpload(t, 300, 50), false)
		return img, err
	})
	require.NoError(t, err)

	_, stale := deps.ImageCache.Get(ctx, model.KindArticle, article.ID)
	require.True(t, stale, "the racing fill should have written the old bytes")

	current, err := svc.Get(ctx, article.ID)
	require.NoError(t, err)
	fresh, err := svc.Image(ctx, article.ID)
	require.NoError(t, err)
	assert.True(t, fresh.UpdatedAt.Equal(current.UpdatedAt), "served %v, row is at %v", fresh.UpdatedAt, current.UpdatedAt)
	assert.NotEqual(t, old.Data, fresh.Data)
	assert.Equal(t, 300, decodeJPEG(t, fresh.Data).Width)

	// The refreshed entry is cached and served on the next read.
	cached, ok := deps.ImageCache.Get(ctx, model.KindArticle, article.ID)
	require.True(t, ok)
	assert.Equal(t, fresh.Data, cached.Data)
}

func TestArticleImage_CachedEntryForDeletedRow(t *testing.T) {
	deps := testContentDeps(t, nil)
	svc := NewArticleService(deps)
	ctx := context.Background()

	article, err := svc.Create(ctx, model.ArticleInput{Title: "a", Content: "b"}, pngUpload(t, 10, 10))
	require.NoError(t, err)
	img, err := svc.Image(ctx, article.ID)
	require.NoError(t, err)

	// The row disappears without the service invalidating its entry.
	_, err = deps.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, article.ID)
	require.NoError(t, err)
	deps.ImageCache.Set(ctx, model.KindArticle, article.ID, img)

	_, err = svc.Image(ctx, article.ID)
	requireKind(t, err, apperror.NotFound)
	_, ok := deps.ImageCache.Get(ctx, model.KindArticle, article.ID)
	assert.False(t, ok, "entry for a missing row should be dropped")
}
