// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/watesa-go/internal/model"
)

// Metadata columns never include the image bytes, only their length.
const articleMetaColumns = `id, title, content, youtube_video_id,
	COALESCE(image_content_type, ''), COALESCE(length(image), 0), created_at, updated_at`

func scanArticle(row rowScanner) (model.Article, error) {
	var (
		a                  model.Article
		createdAt, updated int64
	)
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.YoutubeVideoID,
		&a.Image.ContentType, &a.Image.Size, &createdAt, &updated)
	if err != nil {
		return model.Article{}, err
	}
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updated)
	return a, nil
}

// CreateArticleParams holds the fields of a new article.
type CreateArticleParams struct {
	ID             string
	Title          string
	Content        string
	YoutubeVideoID string
	Image          *model.Image // nil when no image was uploaded
	CreatedAt      time.Time
}

// CreateArticle inserts an article and returns its metadata.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (model.Article, error) {
	data, contentType := imageColumns(arg.Image)
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO articles (id, title, content, youtube_video_id, image, image_content_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+articleMetaColumns,
		arg.ID, arg.Title, arg.Content, arg.YoutubeVideoID, data, contentType,
		toMillis(arg.CreatedAt), toMillis(arg.CreatedAt))
	return scanArticle(row)
}

// GetArticle returns an article's metadata.
func (q *Queries) GetArticle(ctx context.Context, id string) (model.Article, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+articleMetaColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// ListArticles returns all articles, newest first.
func (q *Queries) ListArticles(ctx context.Context) ([]model.Article, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+articleMetaColumns+` FROM articles ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	articles := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// UpdateArticleParams holds the full replacement field set of an article.
type UpdateArticleParams struct {
	ID             string
	Title          string
	Content        string
	YoutubeVideoID string
	UpdatedAt      time.Time
}

// UpdateArticle replaces the text fields and bumps updated_at.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE articles SET title = ?, content = ?, youtube_video_id = ?, updated_at = ? WHERE id = ?`,
		arg.Title, arg.Content, arg.YoutubeVideoID, toMillis(arg.UpdatedAt), arg.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// SetArticleImage replaces the image and its content type together.
func (q *Queries) SetArticleImage(ctx context.Context, id string, img model.Image) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE articles SET image = ?, image_content_type = ? WHERE id = ?`,
		img.Data, img.ContentType, id)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// ClearArticleImage removes the image and its content type together.
func (q *Queries) ClearArticleImage(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE articles SET image = NULL, image_content_type = NULL WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// GetArticleImage returns the stored image bytes and the row's updated_at.
// A row without an image yields an empty Image, not an error.
func (q *Queries) GetArticleImage(ctx context.Context, id string) (model.StoredImage, error) {
	var (
		img     model.StoredImage
		updated int64
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(image, X''), COALESCE(image_content_type, ''), updated_at FROM articles WHERE id = ?`, id).
		Scan(&img.Data, &img.ContentType, &updated)
	if err != nil {
		return model.StoredImage{}, err
	}
	img.UpdatedAt = fromMillis(updated)
	return img, nil
}

// DeleteArticle removes the article row, image included.
func (q *Queries) DeleteArticle(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// imageColumns maps an optional image to its nullable column pair.
func imageColumns(img *model.Image) (any, any) {
	if img == nil || !img.Valid() {
		return nil, nil
	}
	return img.Data, img.ContentType
}
