// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// send.go - One-shot message command for the haven CLI.
//
// Command: send
// Short:   Send one message and print the reply
// Aliases: say
//
// Examples:
//   haven send "rough day at work"
//   haven send "feeling better" --mood 7
//   echo "can't sleep again" | haven send
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/haven-tui/internal/storage"
)

// HandleSend handles the "send" command.
func HandleSend(args Args) {
	if err := runSend(args); err != nil {
		FailAndExit(err)
	}
}

func runSend(args Args) error {
	parser := NewArgParser(args.Raw)

	text := strings.Join(parser.Positional(), " ")
	if strings.TrimSpace(text) == "" && !IsTTY() {
		// Piped input: read the message from stdin.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("usage: haven send \"message\" [--mood N]")
	}

	mood := parser.IntFlag(0, "mood", "m")
	if mood != 0 && (mood < 1 || mood > 10) {
		return fmt.Errorf("mood must be a number from 1 to 10")
	}

	ctrl, _, store, err := newController(args)
	if err != nil {
		return err
	}

	msg, err := ctrl.SendMessage(context.Background(), text, mood)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}

	theme, err := store.LoadTheme()
	if err != nil {
		theme = storage.DefaultTheme
	}
	displayReply(msg.Content, theme)

	if ctrl.CrisisActive() {
		printCrisisBanner()
	}
	return nil
}
