// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestField(t *testing.T) {
	absent := Absent[string]()
	if absent.Present() {
		t.Error("Absent().Present() = true")
	}
	if got := absent.Or("old"); got != "old" {
		t.Errorf("Absent().Or() = %q, want old", got)
	}

	empty := Set("")
	if !empty.Present() {
		t.Error("Set(\"\").Present() = false")
	}
	if got := empty.Or("old"); got != "" {
		t.Errorf("Set(\"\").Or() = %q, want empty", got)
	}

	v, ok := Set(0.0).Get()
	if !ok || v != 0 {
		t.Errorf("Set(0).Get() = %v, %v", v, ok)
	}

	var zero Field[int]
	if zero.Present() {
		t.Error("zero Field should be absent")
	}
}

func TestImageMetaHasImage(t *testing.T) {
	tests := []struct {
		name string
		meta ImageMeta
		want bool
	}{
		{"empty", ImageMeta{}, false},
		{"type only", ImageMeta{ContentType: MimeTypeJPEG}, false},
		{"size only", ImageMeta{Size: 10}, false},
		{"both", ImageMeta{ContentType: MimeTypeJPEG, Size: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.HasImage(); got != tt.want {
				t.Errorf("HasImage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageValid(t *testing.T) {
	if (Image{ContentType: MimeTypeJPEG}).Valid() {
		t.Error("image without bytes should be invalid")
	}
	if !(Image{ContentType: MimeTypeJPEG, Data: []byte{1}}).Valid() {
		t.Error("image with bytes and type should be valid")
	}
}

func TestResolveImageUpdate(t *testing.T) {
	img := &Image{Data: []byte{1}, ContentType: MimeTypeJPEG}

	tests := []struct {
		name   string
		image  *Image
		remove bool
		want   ImageAction
	}{
		{"nothing", nil, false, ImageKeep},
		{"remove", nil, true, ImageRemove},
		{"replace", img, false, ImageReplace},
		{"new image wins over remove", img, true, ImageReplace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveImageUpdate(tt.image, tt.remove)
			if got.Action != tt.want {
				t.Errorf("Action = %v, want %v", got.Action, tt.want)
			}
			if tt.want == ImageReplace && len(got.Image.Data) == 0 {
				t.Error("replace should carry the image")
			}
		})
	}
}

func TestAdminHasOpenReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	a := &Admin{Reset: NoActiveReset{}}
	if a.HasOpenReset(now) {
		t.Error("NoActiveReset should not be open")
	}

	a.Reset = ActiveReset{TokenHash: "h", ExpiresAt: now.Add(time.Minute)}
	if !a.HasOpenReset(now) {
		t.Error("future expiry should be open")
	}
	if a.HasOpenReset(now.Add(time.Minute)) {
		t.Error("reset should be closed at its expiry instant")
	}
}
