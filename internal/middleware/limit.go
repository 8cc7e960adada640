// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
)

// multipartOverhead leaves room for form fields and part headers on top of
// the file size limit.
const multipartOverhead = 1 << 20

// LimitBody caps request bodies at maxUpload plus a fixed allowance for
// non-file fields. Reads past the cap fail, which handlers report as an
// oversized upload.
func LimitBody(maxUpload int64) func(http.Handler) http.Handler {
	limit := maxUpload + multipartOverhead
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
