// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/olegiv/watesa-go/internal/apperror"
	"github.com/olegiv/watesa-go/internal/chatbot"
)

// ChatService relays visitor messages to the chatbot. A nil replier means
// the chatbot is not configured.
type ChatService struct {
	replier chatbot.Replier
	logger  *slog.Logger
}

// NewChatService creates a ChatService.
func NewChatService(replier chatbot.Replier, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{replier: replier, logger: logger}
}

// Enabled reports whether a replier is configured.
func (s *ChatService) Enabled() bool {
	return s.replier != nil
}

// Reply answers message in the context of history.
func (s *ChatService) Reply(ctx context.Context, message string, history []chatbot.Turn) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperror.New(apperror.ValidationFailed, apperror.MsgChatMessageRequired)
	}
	if s.replier == nil {
		return "", apperror.New(apperror.Unavailable, apperror.MsgChatUnavailable)
	}

	reply, err := s.replier.Reply(ctx, message, history)
	if err != nil {
		s.logger.Error("chatbot reply failed", "error", err)
		return "", apperror.Wrap(apperror.Internal, apperror.MsgInternal, err)
	}
	return reply, nil
}
