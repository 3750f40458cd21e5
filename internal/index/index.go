// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides a SQLite search index over the conversation
// history, so past exchanges can be found without scanning the JSON slot.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrEmptyTerm = errors.New("search term is empty")
)

// DefaultLimit caps search results when the caller passes no limit.
const DefaultLimit = 20

// =============================================================================
// MESSAGE INDEX
// =============================================================================

// MessageIndex is a rebuildable search index over persisted messages. The
// JSON slot remains the source of truth; the index is derived state and is
// rebuilt wholesale from the history before each search session.
type MessageIndex struct {
	db *sql.DB
	mu sync.Mutex
}

// Hit is one search result.
type Hit struct {
	ID        string
	Role      model.Role
	Content   string
	Mood      int
	Timestamp time.Time
}

// Open opens (creating if needed) the index database at path.
func Open(path string) (*MessageIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id       TEXT PRIMARY KEY,
		role     TEXT NOT NULL,
		content  TEXT NOT NULL,
		mood     INTEGER NOT NULL DEFAULT 0,
		sent_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_sent_at ON messages(sent_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}

	return &MessageIndex{db: db}, nil
}

// Close closes the underlying database.
func (x *MessageIndex) Close() error {
	return x.db.Close()
}

// Rebuild replaces the index contents with the given history.
func (x *MessageIndex) Rebuild(h *model.History) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO messages (id, role, content, mood, sent_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range h.Messages {
		if _, err := stmt.Exec(m.ID, m.Role.String(), m.Content, m.MoodAtSend, m.Timestamp.UnixMilli()); err != nil {
			return fmt.Errorf("index message %s: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

// Search returns messages whose content contains term, case-insensitively,
// newest first. Limit <= 0 uses DefaultLimit.
func (x *MessageIndex) Search(term string, limit int) ([]Hit, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Escape LIKE wildcards so user input matches literally.
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	pattern := "%" + escaped + "%"

	rows, err := x.db.Query(
		`SELECT id, role, content, mood, sent_at
		 FROM messages
		 WHERE content LIKE ? ESCAPE '\' COLLATE NOCASE
		 ORDER BY sent_at DESC
		 LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var role string
		var sentAt int64
		if err := rows.Scan(&h.ID, &role, &h.Content, &h.Mood, &sentAt); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		h.Role = model.Role(role)
		h.Timestamp = time.UnixMilli(sentAt)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Count returns the number of indexed messages.
func (x *MessageIndex) Count() (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	var n int
	if err := x.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
