// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"time"

	"github.com/olegiv/watesa-go/internal/model"
)

// ArticleResponse is the public view of an article. Image bytes are never
// included; ImageContentType and ImageURL are only set when HasImage is true.
// The id is sent as _id, the key the existing frontend reads.
type ArticleResponse struct {
	ID               string    `json:"_id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	YoutubeVideoID   string    `json:"youtubeVideoId"`
	HasImage         bool      `json:"hasImage"`
	ImageContentType string    `json:"imageContentType,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProductResponse is the public view of a product.
type ProductResponse struct {
	ID               string    `json:"_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Price            float64   `json:"price"`
	YoutubeVideoID   string    `json:"youtubeVideoId"`
	HasImage         bool      `json:"hasImage"`
	ImageContentType string    `json:"imageContentType,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// imageURL is the cache-busting image link; it changes whenever updatedAt does.
func imageURL(kind model.ContentKind, id string, updatedAt time.Time) string {
	return fmt.Sprintf("/api/%ss/%s/image?v=%d", kind, id, updatedAt.UnixMilli())
}

func articleToResponse(a model.Article) ArticleResponse {
	resp := ArticleResponse{
		ID:             a.ID,
		Title:          a.Title,
		Content:        a.Content,
		YoutubeVideoID: a.YoutubeVideoID,
		HasImage:       a.Image.HasImage(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if resp.HasImage {
		resp.ImageContentType = a.Image.ContentType
		resp.ImageURL = imageURL(model.KindArticle, a.ID, a.UpdatedAt)
	}
	return resp
}

func productToResponse(p model.Product) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		YoutubeVideoID: p.YoutubeVideoID,
		HasImage:       p.Image.HasImage(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if resp.HasImage {
		resp.ImageContentType = p.Image.ContentType
		resp.ImageURL = imageURL(model.KindProduct, p.ID, p.UpdatedAt)
	}
	return resp
}
