// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/middleware"
)

// AdminResponse is the public view of an admin identity.
type AdminResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	Admin   AdminResponse `json:"admin"`
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := h.decodeBody(r, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), body.get("username"), body.get("password"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, LoginResponse{
		Message: apperror.MsgLoginSucceeded,
		Token:   res.Token,
		Admin:   AdminResponse{ID: res.Admin.ID, Username: res.Admin.Username},
	})
}

// ChangePassword handles POST /api/admin/change-password.
// Requires a bearer token.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperror.New(apperror.MissingToken, apperror.MsgTokenMissing))
		return
	}
	body, err := h.decodeBody(r, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	err = h.auth.ChangePassword(r.Context(), claims.ID,
		body.get("currentPassword"), body.get("newPassword"), body.get("confirmNewPassword"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, apperror.MsgPasswordChanged)
}

// ForgotPassword handles POST /api/admin/forgot-password. Known and unknown
// usernames get the same answer.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	body, err := h.decodeBody(r, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), body.get("username")); err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, apperror.MsgResetRequested)
}

// ResetPassword handles POST /api/admin/reset-password/{token}.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	body, err := h.decodeBody(r, false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	err = h.auth.CompletePasswordReset(r.Context(), chi.URLParam(r, "token"),
		body.get("password"), body.get("confirmPassword"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, apperror.MsgResetSucceeded)
}
