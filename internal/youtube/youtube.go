// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package youtube normalizes user-supplied YouTube links to bare video ids.
package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsID reports whether s looks like a bare 11-character video id.
func IsID(s string) bool {
	return idPattern.MatchString(s)
}

// ExtractID returns the video id for a bare id or any common YouTube URL
// form (watch?v=, embed/, shorts/, v/, youtu.be/).
// Unrecognized input yields "".
func ExtractID(raw string) string {
	s := strings.TrimSpace(raw)
	if IsID(s) {
		return s
	}
	if s == "" {
		return ""
	}

	candidate := s
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(u.Path, "/")

	switch host {
	case "youtu.be":
		if id := firstSegment(path); IsID(id) {
			return id
		}
	case "youtube.com", "youtube-nocookie.com", "music.youtube.com":
		if id := u.Query().Get("v"); IsID(id) {
			return id
		}
		for _, prefix := range []string{"embed/", "shorts/", "v/", "live/"} {
			if rest, ok := strings.CutPrefix(path, prefix); ok {
				if id := firstSegment(rest); IsID(id) {
					return id
				}
			}
		}
	}
	return ""
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}
