// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/model"
	"github.com/olegiv/watesa-go/internal/store"
	"github.com/olegiv/watesa-go/internal/youtube"
)

type productFields struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
}

var productMessages = fieldMessages{
	"name":        {"required": apperror.MsgProductNameRequired},
	"description": {"required": apperror.MsgProductDescriptionRequired},
	"price":       {"gte": apperror.MsgProductPriceNegative},
}

// parsePrice converts a submitted price. It returns the field message on
// failure.
func parsePrice(raw string) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperror.MsgProductPriceRequired
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, apperror.MsgProductPriceNotNumber
	}
	return price, ""
}

// ProductService is the product repository.
type ProductService struct {
	contentBase
}

// NewProductService creates a ProductService.
func NewProductService(deps ContentDeps) *ProductService {
	return &ProductService{contentBase: newContentBase(model.KindProduct, deps)}
}

// validateProduct checks fields, merging any price parse failure.
func validateProduct(fields productFields, priceMsg string) error {
	errs, err := validateFields(fields, productMessages)
	if err != nil {
		return apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	if priceMsg != "" {
		if errs == nil {
			errs = map[string]string{}
		}
		errs["price"] = priceMsg
	}
	if errs != nil {
		return apperror.Validation(errs)
	}
	return nil
}

// Create validates in, processes the optional upload and stores a new product.
func (s *ProductService) Create(ctx context.Context, in model.ProductInput, upload *Upload) (model.Product, error) {
	price, priceMsg := parsePrice(in.Price)
	fields := productFields{
		Name:        strings.TrimSpace(in.Name),
		Description: blankToEmpty(in.Description),
		Price:       price,
	}
	if err := validateProduct(fields, priceMsg); err != nil {
		return model.Product{}, err
	}

	img, err := s.processUpload(upload)
	if err != nil {
		return model.Product{}, err
	}

	product, err := store.New(s.db).CreateProduct(ctx, store.CreateProductParams{
		ID:             uuid.NewString(),
		Name:           fields.Name,
		Description:    fields.Description,
		Price:          fields.Price,
		YoutubeVideoID: youtube.ExtractID(in.YoutubeVideoID),
		Image:          img,
		CreatedAt:      s.timestamp(),
	})
	if err != nil {
		return model.Product{}, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	s.logger.Info("product created", "product_id", product.ID, "has_image", product.Image.HasImage())
	return product, nil
}

// Update applies patch and the image intent to an existing product. A
// present price always replaces the stored one, including "0"; a present
// but empty or non-numeric price is a validation failure.
func (s *ProductService) Update(ctx context.Context, id string, patch model.ProductPatch, upload *Upload, removeImage bool) (model.Product, error) {
	id, err := parseID(id, apperror.MsgProductInvalidID)
	if err != nil {
		return model.Product{}, err
	}
	img, err := s.processUpload(upload)
	if err != nil {
		return model.Product{}, err
	}
	imageUpdate := model.ResolveImageUpdate(img, removeImage)

	var updated model.Product
	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		current, err := q.GetProduct(ctx, id)
		if err != nil {
			return notFoundOr(err, apperror.MsgProductNotFound)
		}

		fields := productFields{
			Name:        patchText(patch.Name, current.Name, true),
			Description: patchText(patch.Description, current.Description, false),
			Price:       current.Price,
		}
		var priceMsg string
		if raw, ok := patch.Price.Get(); ok {
			fields.Price, priceMsg = parsePrice(raw)
		}
		if err := validateProduct(fields, priceMsg); err != nil {
			return err
		}

		err = q.UpdateProduct(ctx, store.UpdateProductParams{
			ID:             id,
			Name:           fields.Name,
			Description:    fields.Description,
			Price:          fields.Price,
			YoutubeVideoID: patchVideoID(patch.YoutubeVideoID, current.YoutubeVideoID),
			UpdatedAt:      nextUpdatedAt(s.now(), current.UpdatedAt),
		})
		if err != nil {
			return notFoundOr(err, apperror.MsgProductNotFound)
		}

		err = applyImage(imageUpdate,
			func(img model.Image) error { return q.SetProductImage(ctx, id, img) },
			func() error { return q.ClearProductImage(ctx, id) })
		if err != nil {
			return notFoundOr(err, apperror.MsgProductNotFound)
		}

		updated, err = q.GetProduct(ctx, id)
		return notFoundOrNil(err, apperror.MsgProductNotFound)
	})
	if err != nil {
		return model.Product{}, err
	}

	s.invalidateImage(ctx, id)
	s.logger.Info("product updated", "product_id", id, "image_action", imageUpdate.Action)
	return updated, nil
}

// Delete removes a product and its image.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	id, err := parseID(id, apperror.MsgProductInvalidID)
	if err != nil {
		return err
	}
	if err := store.New(s.db).DeleteProduct(ctx, id); err != nil {
		return notFoundOr(err, apperror.MsgProductNotFound)
	}
	s.invalidateImage(ctx, id)
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

// Get returns a product's metadata.
func (s *ProductService) Get(ctx context.Context, id string) (model.Product, error) {
	id, err := parseID(id, apperror.MsgProductInvalidID)
	if err != nil {
		return model.Product{}, err
	}
	product, err := store.New(s.db).GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, notFoundOr(err, apperror.MsgProductNotFound)
	}
	return product, nil
}

// List returns every product, newest first.
func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	products, err := store.New(s.db).ListProducts(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	return products, nil
}

// Image returns the stored image. Products without an image are NotFound.
func (s *ProductService) Image(ctx context.Context, id string) (model.StoredImage, error) {
	id, err := parseID(id, apperror.MsgProductInvalidID)
	if err != nil {
		return model.StoredImage{}, err
	}
	q := store.New(s.db)
	return s.cachedImage(ctx, id, func() (time.Time, error) {
		return q.ProductUpdatedAt(ctx, id)
	}, func() (model.StoredImage, error) {
		img, err := q.GetProductImage(ctx, id)
		if err != nil {
			return model.StoredImage{}, notFoundOr(err, apperror.MsgImageNotFound)
		}
		return img, nil
	})
}
