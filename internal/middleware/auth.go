// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/auth"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyClaims holds the verified session claims.
const ContextKeyClaims ContextKey = "admin_claims"

// TokenVerifier validates a raw session token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// VerifyRequest checks the bearer token of r and maps failures onto the
// auth error kinds.
func VerifyRequest(verifier TokenVerifier, r *http.Request) (*auth.Claims, *apperror.Error) {
	raw, ok := BearerToken(r)
	if !ok {
		return nil, apperror.New(apperror.MissingToken, apperror.MsgTokenMissing)
	}

	claims, err := verifier.Verify(raw)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, auth.ErrExpiredToken):
		return nil, apperror.Wrap(apperror.ExpiredToken, apperror.MsgTokenExpired, err)
	default:
		return nil, apperror.Wrap(apperror.InvalidToken, apperror.MsgTokenInvalid, err)
	}
}

// RequireAdmin creates middleware that rejects requests without a valid
// session token with 401 and stores the claims in the request context.
func RequireAdmin(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, appErr := VerifyRequest(verifier, r)
			if appErr != nil {
				slog.Debug("rejected admin request",
					"path", r.URL.Path, "kind", appErr.Kind.String(), "error", appErr.Err)
				writeMessage(w, appErr.StatusCode(), appErr.Message)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the session claims placed by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*auth.Claims)
	return claims, ok && claims != nil
}

// WithClaims returns a copy of ctx carrying claims. Used by tests and by
// handlers mounted outside RequireAdmin.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ContextKeyClaims, claims)
}
