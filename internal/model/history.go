// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// Greeting is the canonical first assistant message. Resetting the
// conversation always yields a history containing exactly this message.
const Greeting = "Hi, I'm Haven. I'm here to listen - whatever is on your mind, we can talk it through. How are you feeling today?"

// =============================================================================
// HISTORY TYPE
// =============================================================================

// History holds the ordered, append-only message sequence of the
// conversation. Insertion order is chronological and significant. The only
// destructive operation is Reset, which replaces the history wholesale.
type History struct {
	Messages  []*Message `json:"messages"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewHistory creates a history seeded with the canonical greeting.
func NewHistory() *History {
	h := &History{}
	h.Reset()
	return h
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the history.
func (h *History) Append(msg *Message) {
	h.Messages = append(h.Messages, msg)
	h.UpdatedAt = time.Now()
}

// AppendUser creates and appends a user message with an optional mood.
func (h *History) AppendUser(content string, mood int) *Message {
	msg := NewUserMessage(content, mood)
	h.Append(msg)
	return msg
}

// AppendAssistant creates and appends an assistant message.
func (h *History) AppendAssistant(content string) *Message {
	msg := NewAssistantMessage(content)
	h.Append(msg)
	return msg
}

// Reset replaces the history with a single fresh greeting message.
// This is irreversible; callers are responsible for confirming with the user.
func (h *History) Reset() {
	h.Messages = []*Message{NewAssistantMessage(Greeting)}
	h.UpdatedAt = time.Now()
}

// Last returns the most recent message, or nil if empty.
func (h *History) Last() *Message {
	if len(h.Messages) == 0 {
		return nil
	}
	return h.Messages[len(h.Messages)-1]
}

// LastUser returns the most recent user message, or nil.
func (h *History) LastUser() *Message {
	for i := len(h.Messages) - 1; i >= 0; i-- {
		if h.Messages[i].Role == RoleUser {
			return h.Messages[i]
		}
	}
	return nil
}

// Len returns the number of messages.
func (h *History) Len() int {
	return len(h.Messages)
}

// Preview returns a short summary line for the conversation.
func (h *History) Preview() string {
	if len(h.Messages) == 0 {
		return "Empty conversation"
	}
	first := h.LastUser()
	if first == nil {
		first = h.Messages[0]
	}
	return first.Preview(100)
}
