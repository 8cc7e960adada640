// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Field is an optional value in a partial update: either absent, or present
// with a value (which may itself be the zero value).
type Field[T any] struct {
	value   T
	present bool
}

// Set returns a present field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, present: true}
}

// Absent returns a field that was not supplied.
func Absent[T any]() Field[T] {
	return Field[T]{}
}

// Get returns the value and whether it was supplied.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.present
}

// Present reports whether the field was supplied.
func (f Field[T]) Present() bool {
	return f.present
}

// Or returns the value if present, else def.
func (f Field[T]) Or(def T) T {
	if f.present {
		return f.value
	}
	return def
}
