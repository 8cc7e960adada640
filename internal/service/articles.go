// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/model"
	"github.com/olegiv/watesa-go/internal/store"
	"github.com/olegiv/watesa-go/internal/youtube"
)

type articleFields struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

var articleMessages = fieldMessages{
	"title":   {"required": apperror.MsgArticleTitleRequired},
	"content": {"required": apperror.MsgArticleContentRequired},
}

// ArticleService is the article repository.
type ArticleService struct {
	contentBase
}

// NewArticleService creates an ArticleService.
func NewArticleService(deps ContentDeps) *ArticleService {
	return &ArticleService{contentBase: newContentBase(model.KindArticle, deps)}
}

// Create validates in, processes the optional upload and stores a new article.
func (s *ArticleService) Create(ctx context.Context, in model.ArticleInput, upload *Upload) (model.Article, error) {
	fields := articleFields{
		Title:   strings.TrimSpace(in.Title),
		Content: blankToEmpty(in.Content),
	}
	if errs, err := validateFields(fields, articleMessages); err != nil {
		return model.Article{}, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	} else if errs != nil {
		return model.Article{}, apperror.Validation(errs)
	}

	img, err := s.processUpload(upload)
	if err != nil {
		return model.Article{}, err
	}

	article, err := store.New(s.db).CreateArticle(ctx, store.CreateArticleParams{
		ID:             uuid.NewString(),
		Title:          fields.Title,
		Content:        fields.Content,
		YoutubeVideoID: youtube.ExtractID(in.YoutubeVideoID),
		Image:          img,
		CreatedAt:      s.timestamp(),
	})
	if err != nil {
		return model.Article{}, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	s.logger.Info("article created", "article_id", article.ID, "has_image", article.Image.HasImage())
	return article, nil
}

// Update applies patch and the image intent to an existing article.
// updatedAt always moves forward, even when nothing visible changed.
func (s *ArticleService) Update(ctx context.Context, id string, patch model.ArticlePatch, upload *Upload, removeImage bool) (model.Article, error) {
	id, err := parseID(id, apperror.MsgArticleInvalidID)
	if err != nil {
		return model.Article{}, err
	}
	img, err := s.processUpload(upload)
	if err != nil {
		return model.Article{}, err
	}
	imageUpdate := model.ResolveImageUpdate(img, removeImage)

	var updated model.Article
	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		current, err := q.GetArticle(ctx, id)
		if err != nil {
			return notFoundOr(err, apperror.MsgArticleNotFound)
		}

		err = q.UpdateArticle(ctx, store.UpdateArticleParams{
			ID:             id,
			Title:          patchText(patch.Title, current.Title, true),
			Content:        patchText(patch.Content, current.Content, false),
			YoutubeVideoID: patchVideoID(patch.YoutubeVideoID, current.YoutubeVideoID),
			UpdatedAt:      nextUpdatedAt(s.now(), current.UpdatedAt),
		})
		if err != nil {
			return notFoundOr(err, apperror.MsgArticleNotFound)
		}

		err = applyImage(imageUpdate,
			func(img model.Image) error { return q.SetArticleImage(ctx, id, img) },
			func() error { return q.ClearArticleImage(ctx, id) })
		if err != nil {
			return notFoundOr(err, apperror.MsgArticleNotFound)
		}

		updated, err = q.GetArticle(ctx, id)
		return notFoundOrNil(err, apperror.MsgArticleNotFound)
	})
	if err != nil {
		return model.Article{}, err
	}

	s.invalidateImage(ctx, id)
	s.logger.Info("article updated", "article_id", id, "image_action", imageUpdate.Action)
	return updated, nil
}

// Delete removes an article and its image.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	id, err := parseID(id, apperror.MsgArticleInvalidID)
	if err != nil {
		return err
	}
	if err := store.New(s.db).DeleteArticle(ctx, id); err != nil {
		return notFoundOr(err, apperror.MsgArticleNotFound)
	}
	s.invalidateImage(ctx, id)
	s.logger.Info("article deleted", "article_id", id)
	return nil
}

// Get returns an article's metadata.
func (s *ArticleService) Get(ctx context.Context, id string) (model.Article, error) {
	id, err := parseID(id, apperror.MsgArticleInvalidID)
	if err != nil {
		return model.Article{}, err
	}
	article, err := store.New(s.db).GetArticle(ctx, id)
	if err != nil {
		return model.Article{}, notFoundOr(err, apperror.MsgArticleNotFound)
	}
	return article, nil
}

// List returns every article, newest first.
func (s *ArticleService) List(ctx context.Context) ([]model.Article, error) {
	articles, err := store.New(s.db).ListArticles(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	return articles, nil
}

// Image returns the stored image. Articles without an image are NotFound.
func (s *ArticleService) Image(ctx context.Context, id string) (model.StoredImage, error) {
	id, err := parseID(id, apperror.MsgArticleInvalidID)
	if err != nil {
		return model.StoredImage{}, err
	}
	q := store.New(s.db)
	return s.cachedImage(ctx, id, func() (time.Time, error) {
		return q.ArticleUpdatedAt(ctx, id)
	}, func() (model.StoredImage, error) {
		img, err := q.GetArticleImage(ctx, id)
		if err != nil {
			return model.StoredImage{}, notFoundOr(err, apperror.MsgImageNotFound)
		}
		return img, nil
	})
}
