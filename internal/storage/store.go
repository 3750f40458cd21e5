// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local slot-based persistence for haven.
//
// State lives in named slots under one namespace, each slot a JSON document
// in its own file. Four slots are defined (messages, profile, theme,
// journal); settings live in the config file managed by the config package.
// All writes are atomic. A single process owns the directory; there is no
// cross-process locking.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// SLOTS
// =============================================================================

// Slot names. Each maps to one file: <namespace>.<slot>.json.
const (
	SlotMessages = "messages"
	SlotProfile  = "profile"
	SlotTheme    = "theme"
	SlotJournal  = "journal"
)

// namespace prefixes every slot file so unrelated files in the directory are
// never touched.
const namespace = "haven"

var (
	// ErrSlotNotFound indicates the slot has never been written.
	ErrSlotNotFound = errors.New("slot not found")
)

// =============================================================================
// STORE
// =============================================================================

// Store persists application state as JSON slot files.
type Store struct {
	// BaseDir is the directory holding the slot files.
	// Default: ~/.haven/state/
	BaseDir string

	// sealer encrypts slot payloads at rest when configured. Nil means
	// plaintext JSON.
	sealer *Sealer
}

// NewStore creates a store rooted at the default state directory.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(filepath.Join(homeDir, ".haven", "state"))
}

// NewStoreWithDir creates a store with a custom directory.
func NewStoreWithDir(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Store{BaseDir: baseDir}, nil
}

// WithSealer enables at-rest encryption of slot payloads.
// SECURITY: conversation content is sensitive; sealing protects it from
// other local readers of the home directory.
func (s *Store) WithSealer(sealer *Sealer) *Store {
	s.sealer = sealer
	return s
}

// Sealed reports whether at-rest encryption is enabled.
func (s *Store) Sealed() bool {
	return s.sealer != nil
}

// slotPath returns the file path for a slot.
func (s *Store) slotPath(slot string) string {
	return filepath.Join(s.BaseDir, namespace+"."+slot+".json")
}

// =============================================================================
// RAW SLOT ACCESS
// =============================================================================

// PutJSON marshals v and writes it to the slot atomically.
func (s *Store) PutJSON(slot string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal slot %s: %w", slot, err)
	}
	if s.sealer != nil {
		data, err = s.sealer.Seal(data)
		if err != nil {
			return fmt.Errorf("seal slot %s: %w", slot, err)
		}
	}
	// Slot files carry user content, keep them owner-only.
	return util.AtomicWriteFile(s.slotPath(slot), data, 0600)
}

// GetJSON reads a slot into v. Returns ErrSlotNotFound when the slot has
// never been written.
func (s *Store) GetJSON(slot string, v any) error {
	data, err := os.ReadFile(s.slotPath(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrSlotNotFound
		}
		return fmt.Errorf("read slot %s: %w", slot, err)
	}
	if s.sealer != nil {
		data, err = s.sealer.Open(data)
		if err != nil {
			return fmt.Errorf("open slot %s: %w", slot, err)
		}
	} else if IsSealed(data) {
		return fmt.Errorf("read slot %s: %w", slot, ErrSealedSlot)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse slot %s: %w", slot, err)
	}
	return nil
}

// Delete removes a slot file. Deleting a missing slot is not an error.
func (s *Store) Delete(slot string) error {
	err := os.Remove(s.slotPath(slot))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether the slot has been written.
func (s *Store) Exists(slot string) bool {
	_, err := os.Stat(s.slotPath(slot))
	return err == nil
}

// Size returns the on-disk size of a slot in bytes, or 0 when missing.
func (s *Store) Size(slot string) int64 {
	info, err := os.Stat(s.slotPath(slot))
	if err != nil {
		return 0
	}
	return info.Size()
}

// =============================================================================
// TYPED HELPERS
// =============================================================================

// SaveHistory persists the conversation history.
func (s *Store) SaveHistory(h *model.History) error {
	return s.PutJSON(SlotMessages, h)
}

// LoadHistory loads the conversation history, creating a fresh greeted
// history on first run.
func (s *Store) LoadHistory() (*model.History, error) {
	var h model.History
	err := s.GetJSON(SlotMessages, &h)
	if errors.Is(err, ErrSlotNotFound) {
		return model.NewHistory(), nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SaveProfile persists the user profile.
func (s *Store) SaveProfile(p *model.Profile) error {
	return s.PutJSON(SlotProfile, p)
}

// LoadProfile loads the user profile, returning defaults on first run.
// Loaded profiles are normalized before use.
func (s *Store) LoadProfile() (*model.Profile, error) {
	var p model.Profile
	err := s.GetJSON(SlotProfile, &p)
	if errors.Is(err, ErrSlotNotFound) {
		return model.DefaultProfile(), nil
	}
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// DefaultTheme is the display theme used before one is chosen.
const DefaultTheme = "dark"

// themeSlot is the stored shape of the theme preference.
type themeSlot struct {
	Theme string `json:"theme"`
}

// SaveTheme persists the UI theme preference ("dark", "light", or "auto").
func (s *Store) SaveTheme(theme string) error {
	return s.PutJSON(SlotTheme, themeSlot{Theme: theme})
}

// LoadTheme loads the UI theme preference, defaulting to DefaultTheme. A
// missing or unreadable slot falls back to the default; the theme is not
// worth failing a command over.
func (s *Store) LoadTheme() (string, error) {
	var t themeSlot
	if err := s.GetJSON(SlotTheme, &t); err != nil || t.Theme == "" {
		return DefaultTheme, nil
	}
	return t.Theme, nil
}

// journalSlot is the stored shape of the journal.
type journalSlot struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SaveJournal persists the free-text journal.
func (s *Store) SaveJournal(id, text string) error {
	return s.PutJSON(SlotJournal, journalSlot{ID: id, Text: text})
}

// LoadJournal loads the journal text, returning empty on first run.
func (s *Store) LoadJournal() (string, error) {
	var j journalSlot
	err := s.GetJSON(SlotJournal, &j)
	if errors.Is(err, ErrSlotNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return j.Text, nil
}
