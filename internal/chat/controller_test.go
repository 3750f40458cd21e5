// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/jeranaias/haven-tui/internal/completion"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/safety"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// fakeClient records the composed messages and returns canned results.
type fakeClient struct {
	calls    int
	lastSent []completion.ChatMessage
	reply    string
	err      error
}

func (f *fakeClient) Reply(ctx context.Context, messages []completion.ChatMessage) (string, error) {
	f.calls++
	f.lastSent = messages
	return f.reply, f.err
}

func (f *fakeClient) Mode() completion.Mode { return completion.ModeDirect }

var _ ReplyClient = (*fakeClient)(nil)

func newTestController(t *testing.T, client ReplyClient) *Controller {
	t.Helper()
	store, err := storage.NewStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewStoreWithDir: %v", err)
	}
	ctrl, err := New(config.Default(), store, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ctrl
}

func TestSendMessage_NormalTurn(t *testing.T) {
	client := &fakeClient{reply: "that sounds hard"}
	ctrl := newTestController(t, client)

	msg, err := ctrl.SendMessage(context.Background(), "rough day at work", 4)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg == nil || msg.Content != "that sounds hard" {
		t.Fatalf("reply = %v", msg)
	}
	if msg.Role != model.RoleAssistant {
		t.Errorf("reply role = %s", msg.Role)
	}

	// greeting + user + assistant
	h := ctrl.History()
	if h.Len() != 3 {
		t.Fatalf("history length = %d, want 3", h.Len())
	}
	if h.Messages[1].MoodAtSend != 4 {
		t.Errorf("mood = %d, want 4", h.Messages[1].MoodAtSend)
	}
}

func TestSendMessage_EmptyTextIsNoOp(t *testing.T) {
	client := &fakeClient{reply: "never"}
	ctrl := newTestController(t, client)

	for _, text := range []string{"", "   ", "\n\t"} {
		msg, err := ctrl.SendMessage(context.Background(), text, 0)
		if msg != nil || err != nil {
			t.Errorf("SendMessage(%q) = %v, %v; want nil, nil", text, msg, err)
		}
	}
	if client.calls != 0 {
		t.Errorf("client called %d times for empty input", client.calls)
	}
	if ctrl.History().Len() != 1 {
		t.Errorf("history grew on empty input: %d", ctrl.History().Len())
	}
}

func TestSendMessage_CrisisNeverReachesClient(t *testing.T) {
	client := &fakeClient{reply: "should not be used"}
	ctrl := newTestController(t, client)

	msg, err := ctrl.SendMessage(context.Background(), "I want to kill myself", 2)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.Content != safety.Reply {
		t.Errorf("crisis reply = %q, want the fixed safety reply", msg.Content)
	}
	if client.calls != 0 {
		t.Error("crisis turn must not call the completion client")
	}
	if !ctrl.CrisisActive() {
		t.Error("crisis banner flag should be raised")
	}

	// The next ordinary send clears the flag.
	if _, err := ctrl.SendMessage(context.Background(), "thanks, I'm okay now", 0); err != nil {
		t.Fatalf("follow-up send: %v", err)
	}
	if ctrl.CrisisActive() {
		t.Error("crisis banner flag should clear on the next non-crisis send")
	}
}

func TestSendMessage_ClientErrorDegradesToFallback(t *testing.T) {
	client := &fakeClient{err: completion.ErrMissingCredential}
	ctrl := newTestController(t, client)

	before := ctrl.History().Len()
	msg, err := ctrl.SendMessage(context.Background(), "hello", 0)
	if err != nil {
		t.Fatalf("a failed call must not surface an error, got %v", err)
	}
	if msg.Content != completion.FallbackText(completion.ErrMissingCredential, completion.ModeDirect) {
		t.Errorf("fallback reply = %q", msg.Content)
	}
	// Exactly one user and one assistant message appended.
	if got := ctrl.History().Len(); got != before+2 {
		t.Errorf("history grew by %d, want 2", got-before)
	}
}

func TestSendMessage_TransportErrorFallback(t *testing.T) {
	client := &fakeClient{err: &completion.ClientError{
		Kind:    completion.KindTransport,
		Message: "completion endpoint returned HTTP 503",
		Status:  503,
	}}
	ctrl := newTestController(t, client)

	msg, err := ctrl.SendMessage(context.Background(), "hello", 0)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if !strings.Contains(msg.Content, "try again") {
		t.Errorf("fallback = %q, want a retry suggestion", msg.Content)
	}
}

func TestSendMessage_ComposesSystemPromptFirst(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	ctrl := newTestController(t, client)

	if _, err := ctrl.SendMessage(context.Background(), "hello", 0); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	sent := client.lastSent
	if len(sent) < 3 {
		t.Fatalf("composed %d messages, want system + greeting + user", len(sent))
	}
	if sent[0].Role != "system" {
		t.Errorf("first message role = %q, want system", sent[0].Role)
	}
	if sent[1].Content != model.Greeting {
		t.Errorf("second message should be the greeting, got %q", sent[1].Content)
	}
	if last := sent[len(sent)-1]; last.Role != "user" || last.Content != "hello" {
		t.Errorf("last message = %+v, want the new user turn", last)
	}
}

func TestUpdateProfile_AffectsNextSystemPrompt(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	ctrl := newTestController(t, client)

	p := ctrl.Profile()
	p.Name = "Robin"
	p.Preferences.Tone = model.ToneDirect
	if err := ctrl.UpdateProfile(p); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if _, err := ctrl.SendMessage(context.Background(), "hey", 0); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	system := client.lastSent[0].Content
	if !strings.Contains(system, "Robin") {
		t.Errorf("system prompt missing updated name:\n%s", system)
	}
	if !strings.Contains(system, "direct") {
		t.Errorf("system prompt missing updated tone:\n%s", system)
	}
}

func TestResetHistory(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	ctrl := newTestController(t, client)

	if _, err := ctrl.SendMessage(context.Background(), "one", 0); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if _, err := ctrl.SendMessage(context.Background(), "I feel suicidal", 0); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if err := ctrl.ResetHistory(); err != nil {
		t.Fatalf("ResetHistory: %v", err)
	}
	if got := ctrl.History().Len(); got != 1 {
		t.Errorf("history length after reset = %d, want 1", got)
	}
	if ctrl.History().Messages[0].Content != model.Greeting {
		t.Error("reset history should hold only the greeting")
	}
	if ctrl.CrisisActive() {
		t.Error("reset should clear the crisis banner flag")
	}
}

func TestSendMessage_PersistsAcrossControllers(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStoreWithDir(dir)
	if err != nil {
		t.Fatalf("NewStoreWithDir: %v", err)
	}
	ctrl, err := New(config.Default(), store, &fakeClient{reply: "noted"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := ctrl.SendMessage(context.Background(), "remember this", 7); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	// A fresh controller over the same directory sees the turn.
	store2, err := storage.NewStoreWithDir(dir)
	if err != nil {
		t.Fatalf("NewStoreWithDir: %v", err)
	}
	ctrl2, err := New(config.Default(), store2, &fakeClient{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := ctrl2.History()
	if h.Len() != 3 {
		t.Fatalf("reloaded history length = %d, want 3", h.Len())
	}
	if h.Messages[1].Content != "remember this" || h.Messages[1].MoodAtSend != 7 {
		t.Errorf("reloaded turn = %+v", h.Messages[1])
	}
}
