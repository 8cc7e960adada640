// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperror defines the error taxonomy shared by the services and the
// HTTP boundary. Every business-rule violation is an *Error carrying a Kind,
// and each Kind maps to exactly one HTTP status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an application error.
type Kind int

const (
	// Internal is an uncategorized failure. Its details never leave the process.
	Internal Kind = iota
	ValidationFailed
	InvalidCredentials
	WrongCurrentPassword
	Mismatch
	TooShort
	TooLong
	MissingToken
	InvalidToken
	ExpiredToken
	NotFound
	InvalidID
	UnsupportedMediaType
	PayloadTooLarge
	ImageProcessingFailed
	InvalidOrExpiredToken
	Unavailable
)

var kindNames = map[Kind]string{
	Internal:              "Internal",
	ValidationFailed:      "ValidationFailed",
	InvalidCredentials:    "InvalidCredentials",
	WrongCurrentPassword:  "WrongCurrentPassword",
	Mismatch:              "Mismatch",
	TooShort:              "TooShort",
	TooLong:               "TooLong",
	MissingToken:          "MissingToken",
	InvalidToken:          "InvalidToken",
	ExpiredToken:          "ExpiredToken",
	NotFound:              "NotFound",
	InvalidID:             "InvalidID",
	UnsupportedMediaType:  "UnsupportedMediaType",
	PayloadTooLarge:       "PayloadTooLarge",
	ImageProcessingFailed: "ImageProcessingFailed",
	InvalidOrExpiredToken: "InvalidOrExpiredToken",
	Unavailable:           "Unavailable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// StatusCode returns the HTTP status for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case ValidationFailed, WrongCurrentPassword, Mismatch, TooShort, TooLong,
		InvalidID, UnsupportedMediaType, PayloadTooLarge, InvalidOrExpiredToken:
		return http.StatusBadRequest
	case InvalidCredentials, MissingToken, InvalidToken, ExpiredToken:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a categorized application error. Message is safe to show to clients.
// Fields holds per-field messages for ValidationFailed.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error // Underlying error, logged but never sent to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so sentinel
// comparisons like errors.Is(err, apperror.New(apperror.NotFound, "")) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// StatusCode returns the HTTP status for the error's kind.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation creates a ValidationFailed error listing offending fields.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: ValidationFailed, Message: MsgValidationFailed, Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
