// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/watesa-go/internal/middleware"
)

// Route paths
const (
	RouteHealth   = "/health"
	RouteArticles = "/articles"
	RouteProducts = "/products"
	RouteID       = "/{id}"
	RouteIDImage  = "/{id}/image"
)

// Mount registers every /api route on r. Write routes require a bearer
// token verified by verifier and are reachable both under /api/admin and,
// for the existing frontend, directly on the collection paths.
func (h *Handler) Mount(r chi.Router, verifier middleware.TokenVerifier) {
	requireAdmin := middleware.RequireAdmin(verifier)

	r.Get(RouteHealth, h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password/{token}", h.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/change-password", h.ChangePassword)
				h.mountArticleWrites(r)
				h.mountProductWrites(r)
			})
		})

		r.Route(RouteArticles, func(r chi.Router) {
			r.Get("/", h.ListArticles)
			r.Get(RouteID, h.GetArticle)
			r.Get(RouteIDImage, h.GetArticleImage)
			r.With(requireAdmin).Post("/", h.CreateArticle)
			r.With(requireAdmin).Put(RouteID, h.UpdateArticle)
			r.With(requireAdmin).Delete(RouteID, h.DeleteArticle)
		})

		r.Route(RouteProducts, func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get(RouteID, h.GetProduct)
			r.Get(RouteIDImage, h.GetProductImage)
			r.With(requireAdmin).Post("/", h.CreateProduct)
			r.With(requireAdmin).Put(RouteID, h.UpdateProduct)
			r.With(requireAdmin).Delete(RouteID, h.DeleteProduct)
		})

		r.Post("/chatbot/chat", h.Chat)
	})
}

func (h *Handler) mountArticleWrites(r chi.Router) {
	r.Post(RouteArticles, h.CreateArticle)
	r.Put(RouteArticles+RouteID, h.UpdateArticle)
	r.Delete(RouteArticles+RouteID, h.DeleteArticle)
}

func (h *Handler) mountProductWrites(r chi.Router) {
	r.Post(RouteProducts, h.CreateProduct)
	r.Put(RouteProducts+RouteID, h.UpdateProduct)
	r.Delete(RouteProducts+RouteID, h.DeleteProduct)
}

// Router returns a standalone router with the API mounted. Used by tests and
// by callers that add no middleware of their own.
func (h *Handler) Router(verifier middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	h.Mount(r, verifier)
	return r
}
