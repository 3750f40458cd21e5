// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// MARKDOWN TRANSCRIPT
// =============================================================================

// Transcript renders the conversation history as a readable Markdown
// document. Unlike the JSON archive, the transcript is for people, not for
// re-import.
func Transcript(h *model.History) ([]byte, error) {
	if h == nil || h.Len() == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString("# Haven conversation\n\n")
	sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", h.Len()))
	sb.WriteString(fmt.Sprintf("- **Exported**: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString("\n---\n\n")

	for _, msg := range h.Messages {
		sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
			msg.Role.DisplayName(),
			msg.Timestamp.Format("2006-01-02 15:04")))
		if msg.MoodAtSend > 0 {
			sb.WriteString(fmt.Sprintf("*mood %d/10*\n\n", msg.MoodAtSend))
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// TranscriptToFile writes the Markdown transcript into dir and returns the
// output path.
func TranscriptToFile(h *model.History, dir string) (string, error) {
	content, err := Transcript(h)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	filename := fmt.Sprintf("haven_transcript_%s.md", time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0600); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return outputPath, nil
}
