// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestNewHistory_SeededWithGreeting(t *testing.T) {
	h := NewHistory()

	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	first := h.Messages[0]
	if first.Role != RoleAssistant {
		t.Errorf("greeting role = %s, want assistant", first.Role)
	}
	if first.Content != Greeting {
		t.Errorf("greeting content = %q, want the canonical greeting", first.Content)
	}
}

func TestHistory_AppendPreservesOrder(t *testing.T) {
	h := NewHistory()
	h.AppendUser("first", 0)
	h.AppendAssistant("second")
	h.AppendUser("third", 5)

	if h.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", h.Len())
	}
	wantContents := []string{Greeting, "first", "second", "third"}
	for i, want := range wantContents {
		if h.Messages[i].Content != want {
			t.Errorf("Messages[%d].Content = %q, want %q", i, h.Messages[i].Content, want)
		}
	}
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory()
	h.AppendUser("hello", 0)
	h.AppendAssistant("hi there")

	h.Reset()

	if h.Len() != 1 {
		t.Fatalf("Len() after Reset = %d, want 1", h.Len())
	}
	if h.Messages[0].Content != Greeting {
		t.Errorf("Reset did not restore the greeting")
	}
}

func TestHistory_LastAndLastUser(t *testing.T) {
	h := NewHistory()
	if h.LastUser() != nil {
		t.Error("LastUser on fresh history should be nil")
	}

	h.AppendUser("question", 0)
	reply := h.AppendAssistant("answer")

	if h.Last() != reply {
		t.Error("Last() should be the latest appended message")
	}
	if got := h.LastUser(); got == nil || got.Content != "question" {
		t.Errorf("LastUser() = %v, want the user message", got)
	}
}

func TestNewUserMessage_MoodBounds(t *testing.T) {
	tests := []struct {
		mood int
		want int
	}{
		{0, 0},
		{1, 1},
		{10, 10},
		{11, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		msg := NewUserMessage("text", tt.mood)
		if msg.MoodAtSend != tt.want {
			t.Errorf("NewUserMessage(mood=%d).MoodAtSend = %d, want %d", tt.mood, msg.MoodAtSend, tt.want)
		}
	}
}

func TestMessage_IDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewAssistantMessage("x")
		if !strings.HasPrefix(msg.ID, "msg_") {
			t.Fatalf("ID %q missing msg_ prefix", msg.ID)
		}
		if seen[msg.ID] {
			t.Fatalf("duplicate ID %q", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestMessage_PreviewTruncatesRunes(t *testing.T) {
	// UNICODE: truncation must not split multi-byte characters.
	msg := NewAssistantMessage(strings.Repeat("héllo ", 30))
	got := msg.Preview(20)
	if len([]rune(got)) > 20 {
		t.Errorf("Preview(20) returned %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Preview should end with ellipsis, got %q", got)
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleAssistant.DisplayName() != "Haven" {
		t.Errorf("assistant display name = %q", RoleAssistant.DisplayName())
	}
	if RoleUser.DisplayName() != "You" {
		t.Errorf("user display name = %q", RoleUser.DisplayName())
	}
}
