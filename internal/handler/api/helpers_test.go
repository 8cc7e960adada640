// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/watesa-go/internal/auth"
	"github.com/olegiv/watesa-go/internal/chatbot"
	"github.com/olegiv/watesa-go/internal/mail"
	"github.com/olegiv/watesa-go/internal/service"
	"github.com/olegiv/watesa-go/internal/store"
	"github.com/olegiv/watesa-go/internal/testutil"
)

const (
	testSecret    = "api-test-secret-0123456789abcdefgh"
	testUsername  = "admin"
	testPassword  = "rahasia123"
	testRecipient = "ops@watesa.example"
	testMaxUpload = 1 << 20
)

type testEnv struct {
	db     *sql.DB
	h      *Handler
	router http.Handler
	issuer *auth.TokenIssuer
	mailer *mail.RecordingSender
}

type envOption func(*Services)

func withoutChatbot() envOption {
	return func(s *Services) { s.Chat = nil }
}

// newTestEnv wires the handlers over an in-memory database holding one admin.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	db := testutil.MemoryDB(t)
	if err := store.SeedAdmin(context.Background(), db, testUsername, testPassword, bcrypt.MinCost); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	logger := testutil.DiscardLogger()
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	mailer := &mail.RecordingSender{}
	deps := service.ContentDeps{DB: db, Logger: logger}

	svcs := Services{
		Auth: service.NewAuthService(db, issuer, mailer, service.AuthConfig{
			BcryptCost:     bcrypt.MinCost,
			ResetTokenTTL:  10 * time.Minute,
			FrontendURL:    "http://localhost:5173",
			ResetRecipient: testRecipient,
		}, logger),
		Articles: service.NewArticleService(deps),
		Products: service.NewProductService(deps),
		Chat:     service.NewChatService(chatbot.StaticReplier{Text: "Halo dari bot"}, logger),
	}
	for _, opt := range opts {
		opt(&svcs)
	}

	h := NewHandler(db, svcs, Config{
		MaxUploadSize:    testMaxUpload,
		ImageCacheMaxAge: time.Hour,
		ChatMaxHistory:   10,
		Version:          "test",
	}, logger)

	return &testEnv{db: db, h: h, router: h.Router(issuer), issuer: issuer, mailer: mailer}
}

// token issues a session token for the seeded admin.
func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	admin, err := store.New(e.db).GetAdminByUsername(context.Background(), testUsername)
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	tok, err := e.issuer.Issue(admin.ID, admin.Username)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func newJSONRequest(t *testing.T, method, path, body, token string) *http.Request {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// upload is a file part of a multipart request.
type upload struct {
	data        []byte
	contentType string
}

func newMultipartRequest(t *testing.T, method, path string, fields map[string]string, file *upload, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if file != nil {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="upload"`, imageField))
		hdr.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("writing part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var l []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &l); err != nil {
		t.Fatalf("decoding body %q: %v", rec.Body.String(), err)
	}
	return l
}

func pngFile(t *testing.T, w, h int) *upload {
	t.Helper()
	return &upload{data: testutil.PNG(t, w, h), contentType: "image/png"}
}
