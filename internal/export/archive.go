// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export serializes application state to a portable JSON artifact
// and restores it. The API key never leaves the device: it is redacted on
// export and forced empty on import.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// ARCHIVE TYPE
// =============================================================================

// Archive is the exported document: profile, redacted settings, messages.
type Archive struct {
	ID         string    `json:"id"`
	ExportedAt time.Time `json:"exported_at"`

	Profile  *model.Profile   `json:"profile,omitempty"`
	Settings *config.Config   `json:"settings,omitempty"`
	Messages []*model.Message `json:"messages,omitempty"`
}

// Build assembles an archive from live state. The settings copy is redacted;
// the raw key is never serialized.
func Build(cfg *config.Config, profile *model.Profile, history *model.History) *Archive {
	return &Archive{
		ID:         uuid.NewString(),
		ExportedAt: time.Now(),
		Profile:    profile,
		Settings:   cfg.Redacted(),
		Messages:   history.Messages,
	}
}

// =============================================================================
// EXPORT
// =============================================================================

// WriteFile writes the archive as indented JSON into dir and returns the
// output path. The filename carries a timestamp so repeated exports never
// clobber each other.
func WriteFile(a *Archive, dir string) (string, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode archive: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	filename := fmt.Sprintf("haven_export_%s.json", time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(outputPath, data, 0600); err != nil {
		return "", fmt.Errorf("write archive: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// IMPORT
// =============================================================================

// Parse decodes and validates an exported document. The settings' API key is
// forced empty regardless of what the document carries. Parse never touches
// stored state; malformed input surfaces here, before anything is written.
func Parse(data []byte) (*Archive, error) {
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("invalid archive: %w", err)
	}

	if a.Profile == nil && a.Settings == nil && a.Messages == nil {
		return nil, fmt.Errorf("invalid archive: no profile, settings, or messages present")
	}

	for i, m := range a.Messages {
		if m == nil {
			return nil, fmt.Errorf("invalid archive: message %d is null", i)
		}
		if !m.Role.Valid() {
			return nil, fmt.Errorf("invalid archive: message %d has unknown role %q", i, m.Role)
		}
	}

	if a.Profile != nil {
		a.Profile.Normalize()
	}
	if a.Settings != nil {
		// A placeholder or a real key are treated the same: gone.
		a.Settings.Completion.APIKey = ""
	}

	return &a, nil
}

// Apply restores a parsed archive: settings merge over defaults (key stays
// empty) into cfg in place, profile and messages are replaced wholesale when
// present. Called only with a successfully parsed archive, so a failed
// import leaves prior state untouched. The caller persists cfg afterwards.
func Apply(a *Archive, cfg *config.Config, store *storage.Store) error {
	if a.Settings != nil {
		merged := config.Default()
		merged.Completion = a.Settings.Completion
		merged.Generation = a.Settings.Generation
		merged.Completion.APIKey = ""
		merged.Clamp()
		*cfg = *merged
	}

	if a.Profile != nil {
		if err := store.SaveProfile(a.Profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
	}

	if a.Messages != nil {
		h := &model.History{Messages: a.Messages, UpdatedAt: time.Now()}
		if err := store.SaveHistory(h); err != nil {
			return fmt.Errorf("save messages: %w", err)
		}
	}

	return nil
}
