// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command handler for the haven CLI.
//
// Command: status
// Short:   Show configuration and conversation status
// Aliases: s
package cli

import (
	"fmt"

	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// HandleStatus handles the "status" command.
func HandleStatus(args Args) {
	if err := runStatus(args); err != nil {
		FailAndExit(err)
	}
}

func runStatus(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	history, err := store.LoadHistory()
	if err != nil {
		return err
	}
	profile, err := store.LoadProfile()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("haven status"))
	fmt.Println(RenderSeparator(40))

	mode := "direct"
	if cfg.Completion.UseProxy {
		mode = "proxy"
	}
	fmt.Printf("%s %s\n", LabelStyle.Render("Mode:"), ValueStyle.Render(mode))
	fmt.Printf("%s %s\n", LabelStyle.Render("Model:"), ValueStyle.Render(cfg.Completion.Model))

	if cfg.Completion.UseProxy {
		fmt.Printf("%s %s\n", LabelStyle.Render("Relay:"), ValueStyle.Render(cfg.Completion.ProxyURL))
	} else {
		fmt.Printf("%s %s\n", LabelStyle.Render("Endpoint:"), ValueStyle.Render(cfg.Completion.Endpoint))
		if cfg.HasAPIKey() {
			fmt.Printf("%s %s\n", LabelStyle.Render("API key:"), SuccessStyle.Render("configured"))
		} else {
			fmt.Printf("%s %s\n", LabelStyle.Render("API key:"), WarningStyle.Render("not set"))
		}
	}

	fmt.Println()
	fmt.Printf("%s %s\n", LabelStyle.Render("Talking to:"), ValueStyle.Render(profile.Name))
	fmt.Printf("%s %d messages\n", LabelStyle.Render("Conversation:"), history.Len())
	if last := history.Last(); last != nil {
		fmt.Printf("%s %s: %s\n", LabelStyle.Render("Last message:"),
			last.Role.DisplayName(), DimStyle.Render(last.Preview(50)))
	}

	sealed := "plain JSON"
	if store.Sealed() {
		sealed = "encrypted (HAVEN_PASSPHRASE)"
	}
	fmt.Printf("%s %s\n", LabelStyle.Render("Storage:"), ValueStyle.Render(store.BaseDir))
	fmt.Printf("%s %s\n", LabelStyle.Render("At rest:"), ValueStyle.Render(sealed))
	for _, slot := range []string{storage.SlotMessages, storage.SlotProfile, storage.SlotTheme, storage.SlotJournal} {
		if store.Exists(slot) {
			fmt.Printf("%s %s (%d bytes)\n", LabelStyle.Render("Slot:"), ValueStyle.Render(slot), store.Size(slot))
		}
	}
	fmt.Println()
	return nil
}
