// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package chatbot forwards visitor questions to a hosted chat-completions
// model. No conversation state is kept on the server.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultSystemPrompt is used when no prompt is configured.
const DefaultSystemPrompt = "Anda adalah asisten virtual Watesa yang ramah. " +
	"Jawab pertanyaan pengunjung tentang artikel, produk, dan edukasi di situs ini " +
	"dengan singkat dan sopan dalam Bahasa Indonesia."

// Speaker roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("chatbot: empty reply")

// Turn is one earlier message of the conversation.
type Turn struct {
	Role string
	Text string
}

// NormalizeRole maps the role names used by chat widgets onto RoleUser or
// RoleAssistant. Unknown roles report false.
func NormalizeRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user":
		return RoleUser, true
	case "model", "assistant", "bot":
		return RoleAssistant, true
	default:
		return "", false
	}
}

// Replier produces the assistant reply to message given earlier turns.
type Replier interface {
	Reply(ctx context.Context, message string, history []Turn) (string, error)
}

// Config configures the OpenAI-backed replier.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	MaxHistory   int
}

// OpenAIReplier answers through the OpenAI chat-completions API or any
// compatible endpoint set by BaseURL.
type OpenAIReplier struct {
	client     openai.Client
	model      string
	prompt     string
	maxHistory int
}

// NewOpenAIReplier creates a replier from cfg.
func NewOpenAIReplier(cfg Config) *OpenAIReplier {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}
	return &OpenAIReplier{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		prompt:     prompt,
		maxHistory: cfg.MaxHistory,
	}
}

// Reply sends the conversation upstream and returns the first choice.
func (r *OpenAIReplier) Reply(ctx context.Context, message string, history []Turn) (string, error) {
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(r.model),
		Messages: buildMessages(r.prompt, TrimHistory(history, r.maxHistory), message),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// TrimHistory keeps the most recent max turns, dropping turns with an
// unknown role or no text. max <= 0 keeps nothing.
func TrimHistory(history []Turn, max int) []Turn {
	if max <= 0 {
		return nil
	}
	kept := make([]Turn, 0, len(history))
	for _, t := range history {
		role, ok := NormalizeRole(t.Role)
		text := strings.TrimSpace(t.Text)
		if !ok || text == "" {
			continue
		}
		kept = append(kept, Turn{Role: role, Text: text})
	}
	if len(kept) > max {
		kept = kept[len(kept)-max:]
	}
	return kept
}

func buildMessages(prompt string, history []Turn, message string) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, openai.SystemMessage(prompt))
	for _, t := range history {
		if t.Role == RoleAssistant {
			msgs = append(msgs, openai.AssistantMessage(t.Text))
		} else {
			msgs = append(msgs, openai.UserMessage(t.Text))
		}
	}
	return append(msgs, openai.UserMessage(message))
}

// StaticReplier returns a fixed reply. Used in tests and local development.
type StaticReplier struct {
	Text string
	Err  error
}

// Reply returns the configured text or error.
func (s StaticReplier) Reply(context.Context, string, []Turn) (string, error) {
	return s.Text, s.Err
}

var (
	_ Replier = (*OpenAIReplier)(nil)
	_ Replier = StaticReplier{}
)
