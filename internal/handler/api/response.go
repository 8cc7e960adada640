// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/watesa-go/internal/apperror"
)

// MessageResponse is the body of every plain success or error answer.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body. Errors is only set on validation failures.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w http.ResponseWriter, statusCode int, msg string) {
	WriteJSON(w, statusCode, MessageResponse{Message: msg})
}

// WriteError translates err into its status and body. Server-side failures
// are logged with their cause; clients only see the user message.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteMessage(w, http.StatusInternalServerError, apperror.MsgInternal)
		return
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "kind", appErr.Kind, "error", err)
	}
	WriteJSON(w, status, ErrorResponse{Message: appErr.Message, Errors: appErr.Fields})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	WriteError(w, r, h.logger, err)
}
