// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/haven-tui/internal/model"
)

func openTestIndex(t *testing.T) *MessageIndex {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "search.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

// historyAt builds a history whose appended messages carry distinct,
// increasing timestamps, so ordering assertions are deterministic.
func historyAt(t *testing.T, contents ...string) *model.History {
	t.Helper()
	h := model.NewHistory()
	base := time.Now().Add(-time.Hour)
	h.Messages[0].Timestamp = base
	for i, content := range contents {
		msg := h.AppendUser(content, 0)
		msg.Timestamp = base.Add(time.Duration(i+1) * time.Minute)
	}
	return h
}

func TestSearch_CaseInsensitive(t *testing.T) {
	idx := openTestIndex(t)
	if err := idx.Rebuild(historyAt(t, "I slept badly", "work was FINE today")); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	for _, term := range []string{"fine", "FINE", "Fine"} {
		hits, err := idx.Search(term, 0)
		if err != nil {
			t.Fatalf("Search(%q): %v", term, err)
		}
		if len(hits) != 1 || hits[0].Content != "work was FINE today" {
			t.Errorf("Search(%q) = %v", term, hits)
		}
	}
}

func TestSearch_NewestFirst(t *testing.T) {
	idx := openTestIndex(t)
	if err := idx.Rebuild(historyAt(t, "sleep one", "sleep two", "sleep three")); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := idx.Search("sleep", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	want := []string{"sleep three", "sleep two", "sleep one"}
	for i, w := range want {
		if hits[i].Content != w {
			t.Errorf("hits[%d] = %q, want %q", i, hits[i].Content, w)
		}
	}
}

func TestSearch_LimitApplies(t *testing.T) {
	idx := openTestIndex(t)
	if err := idx.Rebuild(historyAt(t, "note a", "note b", "note c", "note d")); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := idx.Search("note", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("got %d hits with limit 2", len(hits))
	}
}

func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	idx := openTestIndex(t)
	h := historyAt(t,
		"we hit 100% coverage",
		"my под_черк has underscores",
		"plain text with nothing special",
	)
	if err := idx.Rebuild(h); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	tests := []struct {
		term string
		want int
	}{
		{"100%", 1},
		{"%", 1},   // literal percent, not match-anything
		{"под_", 1}, // literal underscore, not match-any-char
		{"100_", 0},
	}
	for _, tt := range tests {
		hits, err := idx.Search(tt.term, 0)
		if err != nil {
			t.Fatalf("Search(%q): %v", tt.term, err)
		}
		if len(hits) != tt.want {
			t.Errorf("Search(%q) returned %d hits, want %d", tt.term, len(hits), tt.want)
		}
	}
}

func TestSearch_EmptyTerm(t *testing.T) {
	idx := openTestIndex(t)
	for _, term := range []string{"", "   "} {
		if _, err := idx.Search(term, 0); !errors.Is(err, ErrEmptyTerm) {
			t.Errorf("Search(%q) err = %v, want ErrEmptyTerm", term, err)
		}
	}
}

func TestRebuild_ReplacesContents(t *testing.T) {
	idx := openTestIndex(t)

	if err := idx.Rebuild(historyAt(t, "old entry")); err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}
	if err := idx.Rebuild(historyAt(t, "new entry")); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}

	if hits, _ := idx.Search("old entry", 0); len(hits) != 0 {
		t.Error("stale rows survived a rebuild")
	}
	hits, err := idx.Search("new entry", 0)
	if err != nil || len(hits) != 1 {
		t.Errorf("Search after rebuild = %v, %v", hits, err)
	}

	// greeting + one user message
	n, err := idx.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestSearch_CarriesMoodAndTimestamp(t *testing.T) {
	idx := openTestIndex(t)
	h := model.NewHistory()
	msg := h.AppendUser("anxious about tomorrow", 3)
	if err := idx.Rebuild(h); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	hits, err := idx.Search("anxious", 0)
	if err != nil || len(hits) != 1 {
		t.Fatalf("Search = %v, %v", hits, err)
	}
	hit := hits[0]
	if hit.ID != msg.ID {
		t.Errorf("hit ID = %q, want %q", hit.ID, msg.ID)
	}
	if hit.Mood != 3 {
		t.Errorf("hit mood = %d, want 3", hit.Mood)
	}
	if hit.Role != model.RoleUser {
		t.Errorf("hit role = %s", hit.Role)
	}
	if hit.Timestamp.UnixMilli() != msg.Timestamp.UnixMilli() {
		t.Errorf("hit timestamp = %v, want %v", hit.Timestamp, msg.Timestamp)
	}
}
