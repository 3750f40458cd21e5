// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates a conversation turn: append the user message,
// run the safety filter, obtain the assistant reply, persist after every
// mutation.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/jeranaias/haven-tui/internal/completion"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/prompt"
	"github.com/jeranaias/haven-tui/internal/safety"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// =============================================================================
// REPLY CLIENT INTERFACE
// =============================================================================

// ReplyClient is the completion surface the controller depends on.
// *completion.Client satisfies it; tests substitute fakes.
type ReplyClient interface {
	Reply(ctx context.Context, messages []completion.ChatMessage) (string, error)
	Mode() completion.Mode
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the application state (profile, settings, history) and is
// the single writer of the message slots. One send is processed at a time;
// the mutex serializes turns rather than coordinating concurrent senders -
// the presentation layer blocks on each send.
type Controller struct {
	mu sync.Mutex

	cfg     *config.Config
	store   *storage.Store
	client  ReplyClient
	profile *model.Profile
	history *model.History

	// crisisActive is the banner flag raised by a crisis-triggering send
	// and cleared by the next non-crisis send.
	crisisActive bool
}

// New creates a controller, loading profile and history from the store.
func New(cfg *config.Config, store *storage.Store, client ReplyClient) (*Controller, error) {
	profile, err := store.LoadProfile()
	if err != nil {
		return nil, err
	}
	history, err := store.LoadHistory()
	if err != nil {
		return nil, err
	}
	return &Controller{
		cfg:     cfg,
		store:   store,
		client:  client,
		profile: profile,
		history: history,
	}, nil
}

// =============================================================================
// SENDING
// =============================================================================

// SendMessage processes one conversation turn and returns the appended
// assistant message.
//
// Empty or whitespace-only text is a no-op returning (nil, nil): history
// length is unchanged and nothing is persisted. A crisis-triggering send
// never reaches the completion client; the fixed safety reply is appended
// instead and the banner flag is raised. A failed completion call degrades
// to in-band fallback text - the turn always appends exactly one user and
// one assistant message, so the conversation never gets stuck. No retries.
func (c *Controller) SendMessage(ctx context.Context, text string, mood int) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.history.AppendUser(text, mood)
	if err := c.store.SaveHistory(c.history); err != nil {
		return nil, err
	}

	var reply string
	if safety.IsCrisis(text) {
		c.crisisActive = true
		reply = safety.Reply
	} else {
		c.crisisActive = false
		content, err := c.client.Reply(ctx, c.composeMessages())
		if err != nil {
			reply = completion.FallbackText(err, c.client.Mode())
		} else {
			reply = content
		}
	}

	msg := c.history.AppendAssistant(reply)
	if err := c.store.SaveHistory(c.history); err != nil {
		return msg, err
	}
	return msg, nil
}

// composeMessages builds the wire message list: system instruction first,
// then the full history as role/content pairs. The system prompt is
// recomputed from the live profile on every send.
func (c *Controller) composeMessages() []completion.ChatMessage {
	messages := make([]completion.ChatMessage, 0, c.history.Len()+1)
	messages = append(messages, completion.NewSystemMessage(prompt.BuildSystemPrompt(c.profile)))
	for _, m := range c.history.Messages {
		if m.Content == "" {
			continue
		}
		messages = append(messages, completion.ChatMessage{
			Role:    m.Role.String(),
			Content: m.Content,
		})
	}
	return messages
}

// =============================================================================
// HISTORY OPERATIONS
// =============================================================================

// ResetHistory irreversibly replaces the history with the canonical
// greeting and persists it. Callers must confirm with the user first.
func (c *Controller) ResetHistory() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history.Reset()
	c.crisisActive = false
	return c.store.SaveHistory(c.history)
}

// History returns the live history. Callers treat it as read-only.
func (c *Controller) History() *model.History {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history
}

// CrisisActive reports whether the crisis banner should be shown.
func (c *Controller) CrisisActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.crisisActive
}

// =============================================================================
// PROFILE OPERATIONS
// =============================================================================

// Profile returns the current profile.
func (c *Controller) Profile() *model.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// UpdateProfile overwrites the profile and persists it. The next send picks
// up the change because the system prompt is never cached.
func (c *Controller) UpdateProfile(p *model.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p.Normalize()
	c.profile = p
	return c.store.SaveProfile(p)
}
