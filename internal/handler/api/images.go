// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/model"
)

// serveImage writes stored image bytes. Missing images and malformed ids
// both answer with a plain-text 404; only server failures get a JSON body.
func (h *Handler) serveImage(w http.ResponseWriter, r *http.Request, img model.StoredImage, err error) {
	if err != nil {
		if apperror.KindOf(err) == apperror.Internal {
			h.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, apperror.MsgImageNotFound)
		return
	}

	header := w.Header()
	header.Set("Content-Type", img.ContentType)
	header.Set("Content-Length", strconv.Itoa(len(img.Data)))
	header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.cfg.ImageCacheMaxAge.Seconds())))
	header.Set("X-Content-Type-Options", "nosniff")
	if !img.UpdatedAt.IsZero() {
		header.Set("Last-Modified", img.UpdatedAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(img.Data)
	}
}
