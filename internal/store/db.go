// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the application's SQL against a DBTX.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// RunInTx executes fn inside a transaction, committing on success.
func RunInTx(ctx context.Context, db *sql.DB, fn func(q *Queries) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(New(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Timestamps are stored as Unix milliseconds, the resolution readers use
// for cache-busting URLs.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// rowsAffectedOne converts a zero-row update or delete into sql.ErrNoRows.
func rowsAffectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArticleUpdatedAt returns the article's updated_at without reading the image.
func (q *Queries) ArticleUpdatedAt(ctx context.Context, id string) (time.Time, error) {
	return q.updatedAt(ctx, "articles", id)
}

// ProductUpdatedAt returns the product's updated_at without reading the image.
func (q *Queries) ProductUpdatedAt(ctx context.Context, id string) (time.Time, error) {
	return q.updatedAt(ctx, "products", id)
}

// updatedAt reads the version column of a content table. table is never
// caller input.
func (q *Queries) updatedAt(ctx context.Context, table, id string) (time.Time, error) {
	var ms int64
	err := q.db.QueryRowContext(ctx, `SELECT updated_at FROM `+table+` WHERE id = ?`, id).Scan(&ms)
	if err != nil {
		return time.Time{}, err
	}
	return fromMillis(ms), nil
}
