// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/model"
)

// ListProducts handles GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, productToResponse(p))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetProduct handles GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, productToResponse(product))
}

// GetProductImage handles GET /api/products/{id}/image
func (h *Handler) GetProductImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.products.Image(r.Context(), chi.URLParam(r, "id"))
	h.serveImage(w, r, img, err)
}

// CreateProduct handles POST /api/admin/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	body, err := h.decodeBody(r, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.products.Create(r.Context(), model.ProductInput{
		Name:           body.get("name"),
		Description:    body.get("description"),
		Price:          body.get("price"),
		YoutubeVideoID: body.get("youtubeVideoId"),
	}, body.upload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, productToResponse(product))
}

// UpdateProduct handles PUT /api/admin/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	body, err := h.decodeBody(r, true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), model.ProductPatch{
		Name:           body.field("name"),
		Description:    body.field("description"),
		Price:          body.field("price"),
		YoutubeVideoID: body.field("youtubeVideoId"),
	}, body.upload, body.flag("removeImage"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, productToResponse(product))
}

// DeleteProduct handles DELETE /api/admin/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, apperror.MsgProductDeleted)
}
