// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/watesa-go/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "watesa-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}

	return db, cleanup
}

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func createTestAdmin(t *testing.T, q *Queries) model.Admin {
	t.Helper()
	admin, err := q.CreateAdmin(context.Background(), CreateAdminParams{
		ID:           "0b7cf7a5-4d4e-4a5c-9b55-0d3c1e9f7a01",
		Username:     "admin",
		PasswordHash: "hash",
		CreatedAt:    baseTime,
	})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	return admin
}

func TestCreateAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	admin := createTestAdmin(t, New(db))

	if admin.Username != "admin" {
		t.Errorf("Username = %q, want admin", admin.Username)
	}
	if _, ok := admin.Reset.(model.NoActiveReset); !ok {
		t.Errorf("Reset = %#v, want NoActiveReset", admin.Reset)
	}
	if !admin.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt = %v, want %v", admin.CreatedAt, baseTime)
	}
}

func TestCreateAdmin_DuplicateUsername(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	q := New(db)
	createTestAdmin(t, q)

	_, err := q.CreateAdmin(context.Background(), CreateAdminParams{
		ID: "other", Username: "admin", PasswordHash: "x", CreatedAt: baseTime,
	})
	if err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestGetAdminByUsername_NotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	_, err := New(db).GetAdminByUsername(context.Background(), "ghost")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestAdminResetLifecycle(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	admin := createTestAdmin(t, q)

	reset := model.ActiveReset{TokenHash: "tokenhash", ExpiresAt: baseTime.Add(10 * time.Minute)}
	if err := q.SetAdminReset(ctx, admin.ID, reset, baseTime); err != nil {
		t.Fatalf("SetAdminReset: %v", err)
	}

	found, err := q.GetAdminByResetToken(ctx, "tokenhash", baseTime.Add(time.Minute))
	if err != nil {
		t.Fatalf("GetAdminByResetToken: %v", err)
	}
	active, ok := found.Reset.(model.ActiveReset)
	if !ok {
		t.Fatalf("Reset = %#v, want ActiveReset", found.Reset)
	}
	if !active.ExpiresAt.Equal(reset.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", active.ExpiresAt, reset.ExpiresAt)
	}

	// Expired lookups miss
	_, err = q.GetAdminByResetToken(ctx, "tokenhash", baseTime.Add(10*time.Minute))
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expired lookup: expected sql.ErrNoRows, got %v", err)
	}

	now := baseTime.Add(2 * time.Minute)
	if err := q.CompleteAdminReset(ctx, admin.ID, "tokenhash", "newhash", now); err != nil {
		t.Fatalf("CompleteAdminReset: %v", err)
	}

	after, err := q.GetAdminByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetAdminByID: %v", err)
	}
	if after.PasswordHash != "newhash" {
		t.Errorf("PasswordHash = %q, want newhash", after.PasswordHash)
	}
	if _, ok := after.Reset.(model.NoActiveReset); !ok {
		t.Errorf("Reset = %#v, want NoActiveReset after completion", after.Reset)
	}

	// A consumed token cannot complete twice
	err = q.CompleteAdminReset(ctx, admin.ID, "tokenhash", "again", now)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second completion: expected sql.ErrNoRows, got %v", err)
	}
}

func TestClearAdminReset_OnlyMatchingToken(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	admin := createTestAdmin(t, q)

	newer := model.ActiveReset{TokenHash: "newer", ExpiresAt: baseTime.Add(time.Hour)}
	if err := q.SetAdminReset(ctx, admin.ID, newer, baseTime); err != nil {
		t.Fatalf("SetAdminReset: %v", err)
	}

	// Rolling back an older token leaves the newer window open
	if err := q.ClearAdminReset(ctx, admin.ID, "older", baseTime); err != nil {
		t.Fatalf("ClearAdminReset: %v", err)
	}
	got, _ := q.GetAdminByID(ctx, admin.ID)
	if !got.HasOpenReset(baseTime) {
		t.Error("newer reset should survive rollback of an older token")
	}

	if err := q.ClearAdminReset(ctx, admin.ID, "newer", baseTime); err != nil {
		t.Fatalf("ClearAdminReset: %v", err)
	}
	got, _ = q.GetAdminByID(ctx, admin.ID)
	if got.HasOpenReset(baseTime) {
		t.Error("reset should be cleared")
	}
}

func TestUpsertAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	admin := createTestAdmin(t, q)
	_ = q.SetAdminReset(ctx, admin.ID, model.ActiveReset{TokenHash: "t", ExpiresAt: baseTime.Add(time.Hour)}, baseTime)

	updated, err := q.UpsertAdmin(ctx, UpsertAdminParams{
		ID: "ignored", Username: "admin", PasswordHash: "rotated", Now: baseTime.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("UpsertAdmin: %v", err)
	}
	if updated.ID != admin.ID {
		t.Errorf("ID = %q, want existing %q", updated.ID, admin.ID)
	}
	if updated.PasswordHash != "rotated" {
		t.Errorf("PasswordHash = %q, want rotated", updated.PasswordHash)
	}
	if updated.HasOpenReset(baseTime) {
		t.Error("upsert should close any reset window")
	}

	created, err := q.UpsertAdmin(ctx, UpsertAdminParams{
		ID: "second-id", Username: "editor", PasswordHash: "h", Now: baseTime,
	})
	if err != nil {
		t.Fatalf("UpsertAdmin (new): %v", err)
	}
	if created.ID != "second-id" {
		t.Errorf("ID = %q, want second-id", created.ID)
	}

	n, err := q.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if n != 2 {
		t.Errorf("CountAdmins = %d, want 2", n)
	}
}

func TestArticleCRUD(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	img := &model.Image{Data: []byte{0xFF, 0xD8, 0xFF}, ContentType: model.MimeTypeJPEG}
	created, err := q.CreateArticle(ctx, CreateArticleParams{
		ID: "a1", Title: "Hello", Content: "World", Image: img, CreatedAt: baseTime,
	})
	if err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	if !created.Image.HasImage() || created.Image.Size != 3 {
		t.Errorf("Image = %+v, want 3-byte jpeg", created.Image)
	}
	if created.YoutubeVideoID != "" {
		t.Errorf("YoutubeVideoID = %q, want empty default", created.YoutubeVideoID)
	}

	stored, err := q.GetArticleImage(ctx, "a1")
	if err != nil {
		t.Fatalf("GetArticleImage: %v", err)
	}
	if !bytes.Equal(stored.Data, img.Data) || stored.ContentType != model.MimeTypeJPEG {
		t.Errorf("stored image = %+v", stored)
	}

	err = q.UpdateArticle(ctx, UpdateArticleParams{
		ID: "a1", Title: "Hi", Content: "World", YoutubeVideoID: "dQw4w9WgXcQ", UpdatedAt: baseTime.Add(time.Second),
	})
	if err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}
	if err := q.ClearArticleImage(ctx, "a1"); err != nil {
		t.Fatalf("ClearArticleImage: %v", err)
	}
	// Clearing twice is a no-op, not an error
	if err := q.ClearArticleImage(ctx, "a1"); err != nil {
		t.Fatalf("ClearArticleImage (again): %v", err)
	}

	got, err := q.GetArticle(ctx, "a1")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if got.Title != "Hi" || got.YoutubeVideoID != "dQw4w9WgXcQ" {
		t.Errorf("article = %+v", got)
	}
	if got.Image.HasImage() {
		t.Error("image should be cleared")
	}
	if !got.UpdatedAt.Equal(baseTime.Add(time.Second)) {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(baseTime) {
		t.Errorf("CreatedAt changed to %v", got.CreatedAt)
	}

	if err := q.DeleteArticle(ctx, "a1"); err != nil {
		t.Fatalf("DeleteArticle: %v", err)
	}
	if err := q.DeleteArticle(ctx, "a1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("second delete: expected sql.ErrNoRows, got %v", err)
	}
	if _, err := q.GetArticle(ctx, "a1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetArticle after delete: expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateArticle_NotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	err := New(db).UpdateArticle(context.Background(), UpdateArticleParams{ID: "missing", UpdatedAt: baseTime})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestContentUpdatedAt(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	if _, err := q.CreateArticle(ctx, CreateArticleParams{ID: "a1", Title: "t", Content: "c", CreatedAt: baseTime}); err != nil {
		t.Fatalf("CreateArticle: %v", err)
	}
	if _, err := q.CreateProduct(ctx, CreateProductParams{ID: "p1", Name: "n", Description: "d", CreatedAt: baseTime}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	later := baseTime.Add(1500 * time.Millisecond)
	if err := q.UpdateArticle(ctx, UpdateArticleParams{ID: "a1", Title: "t", Content: "c", UpdatedAt: later}); err != nil {
		t.Fatalf("UpdateArticle: %v", err)
	}

	got, err := q.ArticleUpdatedAt(ctx, "a1")
	if err != nil || !got.Equal(later) {
		t.Errorf("ArticleUpdatedAt = %v, %v; want %v", got, err, later)
	}
	got, err = q.ProductUpdatedAt(ctx, "p1")
	if err != nil || !got.Equal(baseTime) {
		t.Errorf("ProductUpdatedAt = %v, %v; want %v", got, err, baseTime)
	}

	if _, err := q.ArticleUpdatedAt(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ArticleUpdatedAt(missing): expected sql.ErrNoRows, got %v", err)
	}
	if _, err := q.ProductUpdatedAt(ctx, "a1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ProductUpdatedAt(article id): expected sql.ErrNoRows, got %v", err)
	}
}

func TestListArticles_NewestFirst(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	for i, id := range []string{"old", "mid", "new"} {
		_, err := q.CreateArticle(ctx, CreateArticleParams{
			ID: id, Title: id, Content: "c", CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateArticle(%s): %v", id, err)
		}
	}

	list, err := q.ListArticles(ctx)
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if list[i].ID != want {
			t.Errorf("list[%d] = %q, want %q", i, list[i].ID, want)
		}
	}
}

func TestListArticles_Empty(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	list, err := New(db).ListArticles(context.Background())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("list = %#v, want empty non-nil slice", list)
	}
}

func TestProductCRUD(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	created, err := q.CreateProduct(ctx, CreateProductParams{
		ID: "p1", Name: "Kopi", Description: "Robusta", Price: 25000, CreatedAt: baseTime,
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if created.Price != 25000 {
		t.Errorf("Price = %v, want 25000", created.Price)
	}
	if created.Image.HasImage() {
		t.Error("product created without image should have none")
	}

	img := model.Image{Data: []byte{1, 2, 3, 4}, ContentType: model.MimeTypeJPEG}
	if err := q.SetProductImage(ctx, "p1", img); err != nil {
		t.Fatalf("SetProductImage: %v", err)
	}
	err = q.UpdateProduct(ctx, UpdateProductParams{
		ID: "p1", Name: "Kopi", Description: "Robusta", Price: 0, UpdatedAt: baseTime.Add(time.Second),
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	got, err := q.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Price != 0 {
		t.Errorf("Price = %v, want 0", got.Price)
	}
	if got.Image.Size != 4 {
		t.Errorf("Image.Size = %d, want 4", got.Image.Size)
	}

	list, err := q.ListProducts(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListProducts = %v, %v", list, err)
	}

	if err := q.DeleteProduct(ctx, "p1"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if _, err := q.GetProductImage(ctx, "p1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetProductImage after delete: expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreateProduct_NegativePriceRejected(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	_, err := New(db).CreateProduct(context.Background(), CreateProductParams{
		ID: "p1", Name: "n", Description: "d", Price: -1, CreatedAt: baseTime,
	})
	if err == nil {
		t.Error("expected CHECK constraint violation for negative price")
	}
}

func TestRunInTx_Rollback(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	boom := errors.New("boom")

	err := RunInTx(ctx, db, func(q *Queries) error {
		if _, err := q.CreateArticle(ctx, CreateArticleParams{ID: "tx", Title: "t", Content: "c", CreatedAt: baseTime}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx error = %v, want boom", err)
	}

	if _, err := New(db).GetArticle(ctx, "tx"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("article should have been rolled back, got %v", err)
	}
}

func TestSeedAdmin(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := SeedAdmin(ctx, db, " admin ", "watesa02", bcrypt.MinCost); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	admin, err := New(db).GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("watesa02")) != nil {
		t.Error("seeded password hash does not match")
	}

	// Second run keeps the existing hash
	if err := SeedAdmin(ctx, db, "admin", "different", bcrypt.MinCost); err != nil {
		t.Fatalf("SeedAdmin (again): %v", err)
	}
	again, _ := New(db).GetAdminByUsername(ctx, "admin")
	if again.PasswordHash != admin.PasswordHash {
		t.Error("seed should not overwrite an existing admin")
	}
}

func TestSeedAdmin_EmptyUsername(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	if err := SeedAdmin(context.Background(), db, "   ", "pw", bcrypt.MinCost); err == nil {
		t.Error("expected error for empty username")
	}
}
