// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// journal_cmd.go - Private journal command handlers.
//
// Command: journal
// Short:   Free-form notes that never go near the completion endpoint
//
// Examples:
//   haven journal write          Open an editor-free multi-line entry
//   haven journal show           Print the journal
//   haven journal clear          Delete the journal (asks first)
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/haven-tui/internal/storage"
)

// HandleJournal handles the "journal" command.
func HandleJournal(args Args) {
	if err := runJournal(args); err != nil {
		FailAndExit(err)
	}
}

func runJournal(args Args) error {
	parser := NewArgParser(args.Raw)

	store, err := openStore()
	if err != nil {
		return err
	}

	switch parser.Subcommand() {
	case "", "show":
		text, err := store.LoadJournal()
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			fmt.Println(DimStyle.Render("[Journal is empty. Write with: haven journal write]"))
			return nil
		}
		fmt.Println()
		fmt.Println(TitleStyle.Render("Journal"))
		fmt.Println(text)
		return nil

	case "write", "add":
		return journalWrite(store.LoadJournal, store.SaveJournal)

	case "clear":
		if !promptYesNo("Delete the whole journal? This cannot be undone", false) {
			fmt.Println(DimStyle.Render("[Kept]"))
			return nil
		}
		if err := store.Delete(storage.SlotJournal); err != nil {
			return err
		}
		fmt.Println(SuccessStyle.Render("[Journal cleared]"))
		return nil

	default:
		return fmt.Errorf("unknown journal subcommand: %s", parser.Subcommand())
	}
}

// journalWrite appends a dated entry read from stdin. A line with a single
// "." ends the entry, matching classic mail clients.
func journalWrite(load func() (string, error), save func(id, text string) error) error {
	if err := RequiresTTY("write a journal entry"); err != nil {
		return err
	}

	existing, err := load()
	if err != nil {
		return err
	}

	fmt.Println(DimStyle.Render("Write your entry. End with a single '.' on its own line."))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	entry := strings.TrimSpace(strings.Join(lines, "\n"))
	if entry == "" {
		fmt.Println(DimStyle.Render("[Nothing written]"))
		return nil
	}

	stamp := time.Now().Format("2006-01-02 15:04")
	combined := existing
	if combined != "" {
		combined += "\n\n"
	}
	combined += fmt.Sprintf("## %s\n\n%s", stamp, entry)

	if err := save(uuid.NewString(), combined); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("[Saved]"))
	return nil
}
