// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mail

import (
	"fmt"
	"strings"
	"time"
)

// ResetSubject is the subject line of the password reset email.
const ResetSubject = "Permintaan Reset Password Admin"

// ResetURL builds the frontend link for a raw reset token.
func ResetURL(frontendURL, rawToken string) string {
	return strings.TrimRight(frontendURL, "/") + "/reset-password/" + rawToken
}

// ResetEmail composes the reset message sent to the operator address.
func ResetEmail(to, username, resetURL string, ttl time.Duration) Message {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	text := fmt.Sprintf("Halo Admin,\n\n"+
		"Anda (atau seseorang) meminta reset password untuk username: %s.\n"+
		"Silakan klik link berikut, atau salin dan tempel ke browser Anda untuk menyelesaikan proses dalam %d menit:\n\n"+
		"%s\n\n"+
		"Jika Anda tidak meminta ini, abaikan email ini dan password Anda akan tetap aman.\n",
		username, minutes, resetURL)

	return Message{
		To:      to,
		Subject: ResetSubject,
		Text:    text,
		HTML:    TextToHTML(text),
	}
}
