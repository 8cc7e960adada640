// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/auth"
	"github.com/olegiv/watesa-go/internal/mail"
	"github.com/olegiv/watesa-go/internal/metrics"
	"github.com/olegiv/watesa-go/internal/model"
	"github.com/olegiv/watesa-go/internal/store"
)

// AuthConfig holds the settings the auth flows depend on.
type AuthConfig struct {
	BcryptCost     int
	ResetTokenTTL  time.Duration
	FrontendURL    string
	ResetRecipient string // Operator address that receives every reset link
}

// AuthService implements login, password change and the reset flow.
type AuthService struct {
	db     *sql.DB
	issuer *auth.TokenIssuer
	mailer mail.Sender
	cfg    AuthConfig
	logger *slog.Logger
	now    Clock

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates an AuthService.
func NewAuthService(db *sql.DB, issuer *auth.TokenIssuer, mailer mail.Sender, cfg AuthConfig, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		db:     db,
		issuer: issuer,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *AuthService) WithClock(now Clock) *AuthService {
	s.now = now
	return s
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string
	Admin model.Admin
}

// Login checks credentials and issues a session token. Unknown usernames
// and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = auth.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, apperror.New(apperror.ValidationFailed, apperror.MsgLoginFieldsRequired)
	}
	invalid := apperror.New(apperror.InvalidCredentials, apperror.MsgInvalidCredentials)

	admin, err := store.New(s.db).GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.burnHash(password)
			s.logger.Info("login failed", "username", username, "reason", "unknown user")
			return nil, invalid
		}
		return nil, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}

	ok, err := s.checkPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	if !ok {
		s.logger.Info("login failed", "admin_id", admin.ID, "reason", "wrong password")
		return nil, invalid
	}

	token, err := s.issuer.Issue(admin.ID, admin.Username)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	s.logger.Info("admin logged in", "admin_id", admin.ID, "username", admin.Username)
	return &LoginResult{Token: token, Admin: admin}, nil
}

// VerifyToken validates a session token.
func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	return s.issuer.Verify(token)
}

// ChangePassword replaces the password of adminID after checking the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, adminID, current, newPassword, confirm string) error {
	if current == "" || newPassword == "" || confirm == "" {
		return apperror.New(apperror.ValidationFailed, apperror.MsgAllFieldsRequired)
	}
	if err := checkNewPassword(newPassword, confirm); err != nil {
		return err
	}

	q := store.New(s.db)
	admin, err := q.GetAdminByID(ctx, adminID)
	if err != nil {
		return notFoundOr(err, apperror.MsgAdminNotFound)
	}

	ok, err := s.checkPassword(current, admin.PasswordHash)
	if err != nil {
		return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	if !ok {
		return apperror.New(apperror.WrongCurrentPassword, apperror.MsgWrongCurrentPassword)
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	if err := q.UpdateAdminPassword(ctx, admin.ID, hash, s.now()); err != nil {
		return notFoundOr(err, apperror.MsgAdminNotFound)
	}
	s.logger.Info("admin password changed", "admin_id", admin.ID, "username", admin.Username)
	return nil
}

// RequestPasswordReset opens a reset window for username and mails the
// link to the operator address. Unknown usernames succeed silently. When the
// email cannot be sent the window is closed again.
func (s *AuthService) RequestPasswordReset(ctx context.Context, username string) error {
	username = auth.NormalizeUsername(username)
	if username == "" {
		return apperror.New(apperror.ValidationFailed, apperror.MsgUsernameRequired)
	}
	if s.cfg.ResetRecipient == "" {
		s.logger.Error("password reset requested but STATIC_ADMIN_EMAIL is not set")
		return apperror.New(apperror.Internal, apperror.MsgResetRecipientMissing)
	}

	q := store.New(s.db)
	admin, err := q.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("password reset requested for unknown username", "username", username)
			return nil
		}
		return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}

	raw, hash, err := auth.NewResetSecret()
	if err != nil {
		return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	now := s.now()
	reset := model.ActiveReset{TokenHash: hash, ExpiresAt: now.Add(s.cfg.ResetTokenTTL)}
	if err := q.SetAdminReset(ctx, admin.ID, reset, now); err != nil {
		return notFoundOr(err, apperror.MsgAdminNotFound)
	}

	msg := mail.ResetEmail(s.cfg.ResetRecipient, admin.Username,
		mail.ResetURL(s.cfg.FrontendURL, raw), s.cfg.ResetTokenTTL)
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.ObserveResetEmail(metrics.ResultError)
		s.logger.Error("sending reset email failed", "admin_id", admin.ID, "error", err)

		// The request context may already be cancelled; the rollback must still run.
		rollbackCtx := context.WithoutCancel(ctx)
		if rbErr := q.ClearAdminReset(rollbackCtx, admin.ID, hash, s.now()); rbErr != nil && !errors.Is(rbErr, sql.ErrNoRows) {
			s.logger.Error("rolling back reset token failed", "admin_id", admin.ID, "error", rbErr)
		}
		return apperror.Wrap(apperror.Internal, apperror.MsgResetEmailFailed, err)
	}

	metrics.ObserveResetEmail(metrics.ResultOK)
	s.logger.Info("password reset email sent", "admin_id", admin.ID, "username", admin.Username)
	return nil
}

// CompletePasswordReset sets a new password for the identity owning the
// open reset window of rawToken and closes the window.
func (s *AuthService) CompletePasswordReset(ctx context.Context, rawToken, newPassword, confirm string) error {
	if newPassword == "" || confirm == "" {
		return apperror.New(apperror.ValidationFailed, apperror.MsgResetFieldsRequired)
	}
	if err := checkNewPassword(newPassword, confirm); err != nil {
		return err
	}
	invalid := apperror.New(apperror.InvalidOrExpiredToken, apperror.MsgResetTokenInvalid)
	if rawToken == "" {
		return invalid
	}

	q := store.New(s.db)
	hash := auth.HashResetToken(rawToken)
	now := s.now()
	admin, err := q.GetAdminByResetToken(ctx, hash, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid
		}
		return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}

	passwordHash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	// Hashing takes time; the conditional update re-checks the window.
	if err := q.CompleteAdminReset(ctx, admin.ID, hash, passwordHash, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid
		}
		return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	s.logger.Info("password reset completed", "admin_id", admin.ID, "username", admin.Username)
	return nil
}

// checkPassword treats passwords bcrypt cannot hash as a mismatch.
func (s *AuthService) checkPassword(password, hash string) (bool, error) {
	if len(password) > auth.MaxPasswordBytes {
		return false, nil
	}
	return auth.CheckPassword(password, hash)
}

// burnHash spends the same bcrypt work as a real comparison so unknown
// usernames are not distinguishable by response time.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		h, err := auth.HashPassword("watesa-dummy-password", s.cfg.BcryptCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.checkPassword(password, s.dummyHash)
	}
}

func checkNewPassword(password, confirm string) error {
	if password != confirm {
		return apperror.New(apperror.Mismatch, apperror.MsgPasswordMismatch)
	}
	switch err := auth.ValidateNewPassword(password); {
	case errors.Is(err, auth.ErrPasswordTooShort):
		return apperror.Wrap(apperror.TooShort, apperror.MsgPasswordTooShort, err)
	case errors.Is(err, auth.ErrPasswordTooLong):
		return apperror.Wrap(apperror.TooLong, apperror.MsgPasswordTooLong, err)
	case err != nil:
		return fmt.Errorf("validating password: %w", err)
	}
	return nil
}
