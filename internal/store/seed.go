// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/watesa-go/internal/auth"
)

// SeedAdmin creates the initial admin if no admin with that username exists.
// It never changes an existing admin's password.
func SeedAdmin(ctx context.Context, db *sql.DB, username, password string, cost int) error {
	queries := New(db)
	username = auth.NormalizeUsername(username)
	if username == "" {
		return errors.New("seed admin username is empty")
	}

	_, err := queries.GetAdminByUsername(ctx, username)
	if err == nil {
		slog.Info("admin already exists, skipping seed", "username", username)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin: %w", err)
	}

	passwordHash, err := auth.HashPassword(password, cost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	admin, err := queries.CreateAdmin(ctx, CreateAdminParams{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}

	slog.Info("created initial admin", "id", admin.ID, "username", admin.Username)
	return nil
}
