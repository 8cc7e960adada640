// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ContentKind names an image-bearing content collection.
type ContentKind string

// Content kinds
const (
	KindArticle ContentKind = "article"
	KindProduct ContentKind = "product"
)

// MimeTypeJPEG is the content type of every processed image.
const MimeTypeJPEG = "image/jpeg"

// Image is a processed image payload with its MIME type.
type Image struct {
	Data        []byte
	ContentType string
}

// Valid reports whether the image carries bytes and a content type.
func (i Image) Valid() bool {
	return i.ContentType != "" && len(i.Data) > 0
}

// StoredImage is a persisted image with the modification time of its owner.
type StoredImage struct {
	Image
	UpdatedAt time.Time
}

// ImageMeta describes a stored image without its bytes.
type ImageMeta struct {
	ContentType string
	Size        int64
}

// HasImage is the derived flag shown to readers. It is never stored.
func (m ImageMeta) HasImage() bool {
	return m.ContentType != "" && m.Size > 0
}

// Article is a piece of editorial content.
type Article struct {
	ID             string
	Title          string
	Content        string
	YoutubeVideoID string
	Image          ImageMeta
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Product is a catalog entry.
type Product struct {
	ID             string
	Name           string
	Description    string
	Price          float64
	YoutubeVideoID string
	Image          ImageMeta
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ArticleInput carries the fields of a new article.
type ArticleInput struct {
	Title          string
	Content        string
	YoutubeVideoID string
}

// ProductInput carries the fields of a new product. Price is the raw
// submitted value; parsing belongs to validation.
type ProductInput struct {
	Name           string
	Description    string
	Price          string
	YoutubeVideoID string
}

// ArticlePatch is a partial article update. Absent fields are left untouched.
type ArticlePatch struct {
	Title          Field[string]
	Content        Field[string]
	YoutubeVideoID Field[string]
}

// ProductPatch is a partial product update. A present Price always
// replaces the stored value, even when it is "0".
type ProductPatch struct {
	Name           Field[string]
	Description    Field[string]
	Price          Field[string]
	YoutubeVideoID Field[string]
}

// ImageAction says what an update does with the stored image.
type ImageAction int

// Image actions
const (
	ImageKeep ImageAction = iota
	ImageReplace
	ImageRemove
)

// ImageUpdate is the resolved image intent of an update.
type ImageUpdate struct {
	Action ImageAction
	Image  Image
}

// ResolveImageUpdate applies the precedence rule: a new image wins,
// then the removal flag, otherwise the image is kept.
func ResolveImageUpdate(newImage *Image, remove bool) ImageUpdate {
	switch {
	case newImage != nil:
		return ImageUpdate{Action: ImageReplace, Image: *newImage}
	case remove:
		return ImageUpdate{Action: ImageRemove}
	default:
		return ImageUpdate{Action: ImageKeep}
	}
}

func (a ImageAction) String() string {
	switch a {
	case ImageReplace:
		return "replace"
	case ImageRemove:
		return "remove"
	default:
		return "keep"
	}
}
