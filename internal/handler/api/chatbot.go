// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/olegiv/watesa-go/internal/chatbot"
)

// ChatTurn is one history entry sent by the chat widget. The widget uses
// sender/text; role/content are accepted as well.
type ChatTurn struct {
	Role    string `json:"role,omitempty"`
	Sender  string `json:"sender,omitempty"`
	Text    string `json:"text,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChatRequest is the body of POST /api/chatbot/chat.
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

func (t ChatTurn) turn() chatbot.Turn {
	role := t.Role
	if role == "" {
		role = t.Sender
	}
	text := t.Text
	if text == "" {
		text = t.Content
	}
	return chatbot.Turn{Role: role, Text: text}
}

// Chat handles POST /api/chatbot/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, r, h.bodyError(err))
		return
	}

	history := make([]chatbot.Turn, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, t.turn())
	}
	if h.cfg.ChatMaxHistory > 0 {
		history = chatbot.TrimHistory(history, h.cfg.ChatMaxHistory)
	}

	reply, err := h.chat.Reply(r.Context(), req.Message, history)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
