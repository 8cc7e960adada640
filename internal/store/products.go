// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/olegiv/watesa-go/internal/model"
)

const productMetaColumns = `id, name, description, price, youtube_video_id,
	COALESCE(image_content_type, ''), COALESCE(length(image), 0), created_at, updated_at`

func scanProduct(row rowScanner) (model.Product, error) {
	var (
		p                  model.Product
		createdAt, updated int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.YoutubeVideoID,
		&p.Image.ContentType, &p.Image.Size, &createdAt, &updated)
	if err != nil {
		return model.Product{}, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

// CreateProductParams holds the fields of a new product.
type CreateProductParams struct {
	ID             string
	Name           string
	Description    string
	Price          float64
	YoutubeVideoID string
	Image          *model.Image
	CreatedAt      time.Time
}

// CreateProduct inserts a product and returns its metadata.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (model.Product, error) {
	data, contentType := imageColumns(arg.Image)
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO products (id, name, description, price, youtube_video_id, image, image_content_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+productMetaColumns,
		arg.ID, arg.Name, arg.Description, arg.Price, arg.YoutubeVideoID, data, contentType,
		toMillis(arg.CreatedAt), toMillis(arg.CreatedAt))
	return scanProduct(row)
}

// GetProduct returns a product's metadata.
func (q *Queries) GetProduct(ctx context.Context, id string) (model.Product, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+productMetaColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// ListProducts returns all products, newest first.
func (q *Queries) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+productMetaColumns+` FROM products ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProductParams holds the full replacement field set of a product.
type UpdateProductParams struct {
	ID             string
	Name           string
	Description    string
	Price          float64
	YoutubeVideoID string
	UpdatedAt      time.Time
}

// UpdateProduct replaces the catalog fields and bumps updated_at.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, price = ?, youtube_video_id = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Name, arg.Description, arg.Price, arg.YoutubeVideoID, toMillis(arg.UpdatedAt), arg.ID)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// SetProductImage replaces the image and its content type together.
func (q *Queries) SetProductImage(ctx context.Context, id string, img model.Image) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE products SET image = ?, image_content_type = ? WHERE id = ?`,
		img.Data, img.ContentType, id)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// ClearProductImage removes the image and its content type together.
func (q *Queries) ClearProductImage(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE products SET image = NULL, image_content_type = NULL WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}

// GetProductImage returns the stored image bytes and the row's updated_at.
// A row without an image yields an empty Image, not an error.
func (q *Queries) GetProductImage(ctx context.Context, id string) (model.StoredImage, error) {
	var (
		img     model.StoredImage
		updated int64
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(image, X''), COALESCE(image_content_type, ''), updated_at FROM products WHERE id = ?`, id).
		Scan(&img.Data, &img.ContentType, &updated)
	if err != nil {
		return model.StoredImage{}, err
	}
	img.UpdatedAt = fromMillis(updated)
	return img, nil
}

// DeleteProduct removes the product row, image included.
func (q *Queries) DeleteProduct(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsAffectedOne(res)
}
