// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"log/slog"
	"strings"
)

// RedactedValue replaces the value of any sensitive attribute.
const RedactedValue = "[REDACTED]"

// defaultSensitiveKeys are matched case-insensitively as substrings of attribute keys.
var defaultSensitiveKeys = []string{"password", "token", "secret", "authorization", "api_key"}

// RedactHandler is a slog.Handler that wraps another handler and replaces the
// values of credential-like attributes before they reach it.
type RedactHandler struct {
	inner slog.Handler
	keys  []string
}

// NewRedactHandler wraps inner using the default sensitive key list.
func NewRedactHandler(inner slog.Handler) *RedactHandler {
	return NewRedactHandlerWithKeys(inner, defaultSensitiveKeys)
}

// NewRedactHandlerWithKeys wraps inner using a custom sensitive key list.
func NewRedactHandlerWithKeys(inner slog.Handler, keys []string) *RedactHandler {
	lower := make([]string, len(keys))
	for i, k := range keys {
		lower[i] = strings.ToLower(k)
	}
	return &RedactHandler{inner: inner, keys: lower}
}

// Enabled implements slog.Handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.redact(a))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

// WithAttrs implements slog.Handler.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = h.redact(a)
	}
	return &RedactHandler{inner: h.inner.WithAttrs(cleaned), keys: h.keys}
}

// WithGroup implements slog.Handler.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name), keys: h.keys}
}

func (h *RedactHandler) redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		cleaned := make([]any, len(group))
		for i, ga := range group {
			cleaned[i] = h.redact(ga)
		}
		return slog.Group(a.Key, cleaned...)
	}
	if h.isSensitive(a.Key) {
		return slog.String(a.Key, RedactedValue)
	}
	return a
}

func (h *RedactHandler) isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, k := range h.keys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}
