// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the admin authentication flows and the
// article and product repositories on top of the store.
package service

import (
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/olegiv/watesa-go/internal/apperror"
)

// validate is shared; validator caches struct metadata and is safe for
// concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages maps a json field name and failed tag to a user message.
type fieldMessages map[string]map[string]string

// validateFields runs struct validation and translates failures into
// per-field messages. A nil map means the value is valid.
func validateFields(v any, messages fieldMessages) (map[string]string, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := messages[fe.Field()][fe.Tag()]
		if msg == "" {
			msg = apperror.MsgValidationFailed
		}
		if _, exists := fields[fe.Field()]; !exists {
			fields[fe.Field()] = msg
		}
	}
	return fields, nil
}

// parseID checks that id is a UUID and returns its canonical form.
func parseID(id, invalidMsg string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperror.Wrap(apperror.InvalidID, invalidMsg, err)
	}
	return parsed.String(), nil
}

// notFoundOr maps sql.ErrNoRows to NotFound and wraps anything else as Internal.
func notFoundOr(err error, notFoundMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Wrap(apperror.NotFound, notFoundMsg, err)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
}

// nextUpdatedAt returns now truncated to the stored millisecond resolution,
// pushed past prev when the clock has not advanced.
func nextUpdatedAt(now, prev time.Time) time.Time {
	t := now.UTC().Truncate(time.Millisecond)
	if !t.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return t
}

// Clock returns the current time. Services take it as a dependency.
type Clock func() time.Time

// notFoundOrNil is notFoundOr that passes a nil error through.
func notFoundOrNil(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	return notFoundOr(err, notFoundMsg)
}
