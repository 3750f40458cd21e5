// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// reset_cmd.go - History reset and crisis resource commands.
//
// Command: reset / resources
//
// Examples:
//   haven reset                 Asks for confirmation first
//   haven reset --confirm       Skip the prompt (scripts)
//   haven resources             Print crisis support resources
package cli

import (
	"fmt"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// HandleReset handles the "reset" command.
func HandleReset(args Args) {
	if err := runReset(args); err != nil {
		FailAndExit(err)
	}
}

func runReset(args Args) error {
	parser := NewArgParser(args.Raw)

	if !parser.BoolFlag("confirm", "yes", "y") {
		if !IsTTY() {
			return fmt.Errorf("refusing to reset without --confirm on non-interactive input")
		}
		if !promptYesNo("Clear the whole conversation? This cannot be undone", false) {
			fmt.Println(DimStyle.Render("[Kept]"))
			return nil
		}
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	history, err := store.LoadHistory()
	if err != nil {
		// A corrupt slot should not block a reset; start fresh instead.
		history = model.NewHistory()
	}
	history.Reset()
	if err := store.SaveHistory(history); err != nil {
		return err
	}

	fmt.Println(SuccessStyle.Render("[Conversation cleared]"))
	return nil
}

// HandleResources handles the "resources" command.
func HandleResources(args Args) {
	printCrisisBanner()
}

// HandleTheme handles the "theme" command.
func HandleTheme(args Args) {
	if err := runTheme(args); err != nil {
		FailAndExit(err)
	}
}

func runTheme(args Args) error {
	parser := NewArgParser(args.Raw)

	store, err := openStore()
	if err != nil {
		return err
	}

	choice := parser.Subcommand()
	if choice == "" {
		theme, err := store.LoadTheme()
		if err != nil {
			theme = storage.DefaultTheme
		}
		fmt.Printf("%s %s\n", LabelStyle.Render("Theme:"), ValueStyle.Render(theme))
		return nil
	}

	switch choice {
	case "dark", "light", "auto":
		if err := store.SaveTheme(choice); err != nil {
			return err
		}
		fmt.Printf("%s theme = %s\n", SuccessStyle.Render("[Saved]"), choice)
		return nil
	default:
		return fmt.Errorf("theme must be dark, light, or auto")
	}
}
