// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/olegiv/watesa-go/internal/auth"
	"github.com/olegiv/watesa-go/internal/store"
)

// runCreateAdmin prompts twice for a password and creates the admin or
// replaces its password.
func runCreateAdmin(ctx context.Context, db *sql.DB, username string, cost int) error {
	username = auth.NormalizeUsername(username)
	if username == "" {
		return errors.New("username must not be empty")
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}
	if err := auth.ValidateNewPassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return err
	}
	admin, err := store.New(db).UpsertAdmin(ctx, store.UpsertAdminParams{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Now:          time.Now(),
	})
	if err != nil {
		return fmt.Errorf("saving admin: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "admin %q saved (id %s)\n", admin.Username, admin.ID)
	return nil
}

func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("-create-admin needs an interactive terminal")
	}
	_, _ = fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
