// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// search_cmd.go - Conversation search command handler.
//
// Command: search
// Short:   Find past messages by content
// Aliases: find
//
// Examples:
//   haven search "sleep"
//   haven search work --limit 5
//
// The index is rebuilt from the history on every run: the JSON slot stays
// the source of truth and the index never drifts from it.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeranaias/haven-tui/internal/index"
	"github.com/jeranaias/haven-tui/internal/util"
)

// HandleSearch handles the "search" command.
func HandleSearch(args Args) {
	if err := runSearch(args); err != nil {
		FailAndExit(err)
	}
}

func runSearch(args Args) error {
	parser := NewArgParser(args.Raw)

	term := strings.Join(parser.Positional(), " ")
	if strings.TrimSpace(term) == "" {
		return fmt.Errorf("usage: haven search TERM [--limit N]")
	}
	limit := parser.IntFlag(index.DefaultLimit, "limit", "n")

	store, err := openStore()
	if err != nil {
		return err
	}
	history, err := store.LoadHistory()
	if err != nil {
		return err
	}

	idx, err := index.Open(filepath.Join(store.BaseDir, "search.db"))
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Rebuild(history); err != nil {
		return err
	}

	hits, err := idx.Search(term, limit)
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		fmt.Println(DimStyle.Render("[No matches]"))
		return nil
	}

	fmt.Println()
	fmt.Printf("%s %d match(es) for %q\n", TitleStyle.Render("Search"), len(hits), term)
	fmt.Println()
	for _, h := range hits {
		who := h.Role.DisplayName()
		line := fmt.Sprintf("%s  %s", h.Timestamp.Format("2006-01-02 15:04"), who)
		if h.Mood > 0 {
			line += fmt.Sprintf(" (mood %d/10)", h.Mood)
		}
		fmt.Println(InfoStyle.Render(line))

		content := util.TruncateRunes(strings.ReplaceAll(h.Content, "\n", " "), 120)
		fmt.Printf("  %s\n", ValueStyle.Render(content))
		fmt.Println()
	}
	return nil
}
