// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the store, the services
// and the HTTP layer: admin identities with their reset state, and the two
// image-bearing content kinds.
package model

import "time"

// Admin is the single administrative identity class.
type Admin struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Reset        ResetState `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ResetState is either NoActiveReset or ActiveReset. The token hash and the
// expiry only exist together.
type ResetState interface {
	isResetState()
}

// NoActiveReset means no password reset is in progress.
type NoActiveReset struct{}

// ActiveReset holds the hash of an issued reset secret and when it lapses.
type ActiveReset struct {
	TokenHash string
	ExpiresAt time.Time
}

func (NoActiveReset) isResetState() {}
func (ActiveReset) isResetState()   {}

// OpenAt reports whether the reset window is still open at t.
func (r ActiveReset) OpenAt(t time.Time) bool {
	return r.ExpiresAt.After(t)
}

// HasOpenReset reports whether a reset is in progress and unexpired at t.
func (a *Admin) HasOpenReset(t time.Time) bool {
	active, ok := a.Reset.(ActiveReset)
	return ok && active.OpenAt(t)
}
