// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded images: decode, auto-orient, shrink to
// a maximum width and re-encode as JPEG. It holds no state and touches no
// storage, so identical input and options always give identical output.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // GIF decoder
	"image/jpeg"
	_ "image/png" // PNG decoder
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/watesa-go/internal/model"
)

// MaxPixels bounds the decoded size of an upload.
const MaxPixels = 40_000_000

// Processing failures.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooManyPixels     = errors.New("image dimensions too large")
)

// Options controls the output of Process.
type Options struct {
	MaxWidth int // Neither output dimension exceeds this
	Quality  int // JPEG quality, 1-100
}

// Profiles maps each content kind to its output options.
type Profiles map[model.ContentKind]Options

// DefaultProfiles returns the article and product output settings.
func DefaultProfiles() Profiles {
	return Profiles{
		model.KindArticle: {MaxWidth: 800, Quality: 80},
		model.KindProduct: {MaxWidth: 600, Quality: 75},
	}
}

// Result describes a processed image.
type Result struct {
	model.Image
	Width  int
	Height int
}

// Processor runs the image pipeline for a set of profiles.
type Processor struct {
	profiles Profiles
}

// NewProcessor creates a processor for the given profiles.
func NewProcessor(profiles Profiles) *Processor {
	return &Processor{profiles: profiles}
}

// Options returns the profile for kind.
func (p *Processor) Options(kind model.ContentKind) (Options, bool) {
	opts, ok := p.profiles[kind]
	return opts, ok
}

// ProcessFor runs Process with the profile registered for kind.
func (p *Processor) ProcessFor(kind model.ContentKind, data []byte) (*Result, error) {
	opts, ok := p.profiles[kind]
	if !ok {
		return nil, fmt.Errorf("no image profile for %q", kind)
	}
	return Process(data, opts)
}

// Process decodes data, applies EXIF orientation, shrinks it to fit within
// opts.MaxWidth on both axes (never enlarging) and encodes it as JPEG.
func Process(data []byte, opts Options) (*Result, error) {
	if detectFormat(data) == "" {
		return nil, ErrUnsupportedFormat
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, ErrTooManyPixels
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))
	img = fitWithin(img, opts.MaxWidth)
	img = flatten(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	bounds := img.Bounds()
	return &Result{
		Image:  model.Image{Data: buf.Bytes(), ContentType: model.MimeTypeJPEG},
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// fitWithin scales img down so both sides are at most limit. Images already
// inside the box are returned unchanged.
func fitWithin(img image.Image, limit int) image.Image {
	b := img.Bounds()
	if limit <= 0 || (b.Dx() <= limit && b.Dy() <= limit) {
		return img
	}
	return imaging.Fit(img, limit, limit, imaging.Lanczos)
}

// flatten composites img over white, since JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// readExifOrientation returns the EXIF orientation tag, or 1 if absent.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// detectFormat sniffs the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
