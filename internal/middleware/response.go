// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for bearer authentication,
// security headers, request timeouts, and body limits.
package middleware

import (
	"encoding/json"
	"net/http"
)

// messageResponse is the minimal error body written by middleware.
type messageResponse struct {
	Message string `json:"message"`
}

// writeMessage writes a JSON {message} body with the given status code.
func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(messageResponse{Message: message})
}
