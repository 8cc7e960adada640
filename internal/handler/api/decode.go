// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/model"
	"github.com/olegiv/watesa-go/internal/service"
)

// imageField is the multipart part carrying an upload.
const imageField = "image"

// multipartMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// formData is a decoded request body: scalar fields and the optional upload.
type formData struct {
	values map[string]string
	upload *service.Upload
}

// field returns name as a patch field, absent when it was not submitted.
func (f formData) field(name string) model.Field[string] {
	if v, ok := f.values[name]; ok {
		return model.Set(v)
	}
	return model.Absent[string]()
}

func (f formData) get(name string) string {
	return f.values[name]
}

// flag reports whether name was submitted as the literal "true".
func (f formData) flag(name string) bool {
	return f.values[name] == "true"
}

// decodeBody reads a multipart, urlencoded or JSON body. Uploads are only
// accepted when allowUpload is set; they are checked for size and declared
// type before any business logic runs.
func (h *Handler) decodeBody(r *http.Request, allowUpload bool) (formData, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "multipart/form-data":
		return h.decodeMultipart(r, allowUpload)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return formData{}, h.bodyError(err)
		}
		values := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			values[k] = r.PostForm.Get(k)
		}
		return formData{values: values}, nil
	default:
		return h.decodeJSON(r)
	}
}

func (h *Handler) decodeMultipart(r *http.Request, allowUpload bool) (formData, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return formData{}, h.bodyError(err)
	}
	form := r.MultipartForm
	defer func() { _ = form.RemoveAll() }()

	values := make(map[string]string, len(form.Value))
	for k, v := range form.Value {
		if len(v) > 0 {
			values[k] = v[0]
		}
	}
	data := formData{values: values}

	if !allowUpload {
		return data, nil
	}
	files := form.File[imageField]
	if len(files) == 0 {
		return data, nil
	}
	upload, err := h.acceptUpload(files[0])
	if err != nil {
		return formData{}, err
	}
	data.upload = upload
	return data, nil
}

// acceptUpload enforces the upload size limit and the image/* declared type.
func (h *Handler) acceptUpload(fh *multipart.FileHeader) (*service.Upload, error) {
	if fh.Size > h.cfg.MaxUploadSize {
		return nil, h.tooLarge(nil)
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, apperror.New(apperror.UnsupportedMediaType, apperror.MsgImageOnly)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, apperror.MsgInternal, fmt.Errorf("opening upload: %w", err))
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxUploadSize+1))
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, apperror.MsgInternal, fmt.Errorf("reading upload: %w", err))
	}
	if int64(len(data)) > h.cfg.MaxUploadSize {
		return nil, h.tooLarge(nil)
	}
	return &service.Upload{Data: data, ContentType: contentType}, nil
}

// decodeJSON reads a flat JSON object. Strings, numbers and booleans become
// field values; null means the field was not sent.
func (h *Handler) decodeJSON(r *http.Request) (formData, error) {
	raw := map[string]any{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return formData{values: map[string]string{}}, nil
		}
		return formData{}, h.bodyError(err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			values[k] = v
		case json.Number:
			values[k] = v.String()
		case bool:
			values[k] = strconv.FormatBool(v)
		default:
			return formData{}, apperror.New(apperror.ValidationFailed, apperror.MsgMalformedBody)
		}
	}
	return formData{values: values}, nil
}

// bodyError maps a body read failure to a client error.
func (h *Handler) bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return h.tooLarge(err)
	}
	return apperror.Wrap(apperror.ValidationFailed, apperror.MsgMalformedBody, err)
}

func (h *Handler) tooLarge(err error) error {
	mb := h.cfg.MaxUploadSize >> 20
	if mb < 1 {
		mb = 1
	}
	return apperror.Wrap(apperror.PayloadTooLarge, fmt.Sprintf(apperror.MsgFileTooLarge, mb), err)
}
