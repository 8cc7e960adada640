// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/watesa-go/internal/model"
)

const adminColumns = `id, username, password_hash, reset_token_hash, reset_expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row rowScanner) (model.Admin, error) {
	var (
		a                  model.Admin
		tokenHash          sql.NullString
		expiresAt          sql.NullInt64
		createdAt, updated int64
	)
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &tokenHash, &expiresAt, &createdAt, &updated); err != nil {
		return model.Admin{}, err
	}
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updated)
	if tokenHash.Valid && expiresAt.Valid {
		a.Reset = model.ActiveReset{TokenHash: tokenHash.String, ExpiresAt: fromMillis(expiresAt.Int64)}
	} else {
		a.Reset = model.NoActiveReset{}
	}
	return a, nil
}

// CreateAdminParams holds the fields of a new admin.
type CreateAdminParams struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateAdmin inserts a new admin with no reset in progress.
func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (model.Admin, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO admins (id, username, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+adminColumns,
		arg.ID, arg.Username, arg.PasswordHash, toMillis(arg.CreatedAt), toMillis(arg.CreatedAt))
	return scanAdmin(row)
}

// GetAdminByID returns the admin with the given id.
func (q *Queries) GetAdminByID(ctx context.Context, id string) (model.Admin, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id)
	return scanAdmin(row)
}

// GetAdminByUsername returns the admin with the given username.
func (q *Queries) GetAdminByUsername(ctx context.Context, username string) (model.Admin, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE username = ?`, username)
	return scanAdmin(row)
}

// GetAdminByResetToken returns the admin holding tokenHash with an expiry after now.
func (q *Queries) GetAdminByResetToken(ctx context.Context, tokenHash string, now time.Time) (model.Admin, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins
		 WHERE reset_token_hash = ? AND reset_expires_at > ?`,
		tokenHash, toMillis(now))
	return scanAdmin(row)
}

// UpdateAdminPassword replaces the password hash.
func (q *Queries) UpdateAdminPassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE admins SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, toMillis(now), id)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// SetAdminReset opens a reset window, replacing any previous one.
func (q *Queries) SetAdminReset(ctx context.Context, id string, reset model.ActiveReset, now time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE admins SET reset_token_hash = ?, reset_expires_at = ?, updated_at = ? WHERE id = ?`,
		reset.TokenHash, toMillis(reset.ExpiresAt), toMillis(now), id)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// ClearAdminReset closes the reset window only if it still holds tokenHash,
// so rolling back one request cannot cancel a newer one.
func (q *Queries) ClearAdminReset(ctx context.Context, id, tokenHash string, now time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE admins SET reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?
		 WHERE id = ? AND reset_token_hash = ?`,
		toMillis(now), id, tokenHash)
	return err
}

// CompleteAdminReset sets a new password hash and closes the reset window in
// one statement. It returns sql.ErrNoRows if the token was already consumed,
// replaced, or has expired.
func (q *Queries) CompleteAdminReset(ctx context.Context, id, tokenHash, passwordHash string, now time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE admins
		 SET password_hash = ?, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?
		 WHERE id = ? AND reset_token_hash = ? AND reset_expires_at > ?`,
		passwordHash, toMillis(now), id, tokenHash, toMillis(now))
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// UpsertAdminParams holds the fields for creating or re-keying an admin.
type UpsertAdminParams struct {
	ID           string // Used only when the username is new
	Username     string
	PasswordHash string
	Now          time.Time
}

// UpsertAdmin creates the admin or replaces its password, closing any reset window.
func (q *Queries) UpsertAdmin(ctx context.Context, arg UpsertAdminParams) (model.Admin, error) {
	now := toMillis(arg.Now)
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO admins (id, username, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET
		     password_hash = excluded.password_hash,
		     reset_token_hash = NULL,
		     reset_expires_at = NULL,
		     updated_at = excluded.updated_at
		 RETURNING `+adminColumns,
		arg.ID, arg.Username, arg.PasswordHash, now, now)
	return scanAdmin(row)
}

// CountAdmins returns the number of admin identities.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, err
}
