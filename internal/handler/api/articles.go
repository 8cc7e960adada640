// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/model"
)

// ListArticles handles GET /api/articles
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		resp = append(resp, articleToResponse(a))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetArticle handles GET /api/articles/{id}
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.articles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, articleToResponse(article))
}

// GetArticleImage handles GET /api/articles/{id}/image
func (h *Handler) GetArticleImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.articles.Image(r.Context(), chi.URLParam(r, "id"))
	h.serveImage(w, r, img, err)
}

// CreateArticle handles POST /api/admin/articles
// Accepts multipart/form-data with an optional image part.
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	body, err := h.decodeBody(r, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	article, err := h.articles.Create(r.Context(), model.ArticleInput{
		Title:          body.get("title"),
		Content:        body.get("content"),
		YoutubeVideoID: body.get("youtubeVideoId"),
	}, body.upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, articleToResponse(article))
}

// UpdateArticle handles PUT /api/admin/articles/{id}
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	body, err := h.decodeBody(r, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	article, err := h.articles.Update(r.Context(), chi.URLParam(r, "id"), model.ArticlePatch{
		Title:          body.field("title"),
		Content:        body.field("content"),
		YoutubeVideoID: body.field("youtubeVideoId"),
	}, body.upload, body.flag("removeImage"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, articleToResponse(article))
}

// DeleteArticle handles DELETE /api/admin/articles/{id}
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, apperror.MsgArticleDeleted)
}
