// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Markdown rendering for companion replies.
//
// USABILITY: Markdown rendering for better CLI experience

package cli

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// getMarkdownRenderer builds the glamour renderer lazily, styled by the
// persisted theme ("dark", "light", or "auto").
func getMarkdownRenderer(theme string) *glamour.TermRenderer {
	markdownRendererOnce.Do(func() {
		width := GetTerminalWidth()
		if width > 100 {
			width = 100
		}

		opts := []glamour.TermRendererOption{
			glamour.WithWordWrap(width),
		}
		switch theme {
		case "dark", "light":
			opts = append(opts, glamour.WithStandardStyle(theme))
		default:
			opts = append(opts, glamour.WithAutoStyle())
		}

		r, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			// Fallback to plain text if renderer initialization fails
			markdownRenderer = nil
			return
		}
		markdownRenderer = r
	})
	return markdownRenderer
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or stdout is not a TTY.
func renderMarkdown(content, theme string) string {
	if !IsStdoutTTY() {
		return content
	}
	r := getMarkdownRenderer(theme)
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// displayReply prints one companion reply, markdown-rendered on a TTY.
func displayReply(content, theme string) {
	fmt.Println(renderMarkdown(content, theme))
}
