// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// profile_cmd.go - Profile command handlers for the haven CLI.
//
// Command: profile
// Short:   View or edit the user profile
//
// Examples:
//   haven profile show
//   haven profile set --name Sam --tone direct
//   haven profile set --goals "sleep better, worry less" --depth brief
package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/haven-tui/internal/model"
)

// HandleProfile handles the "profile" command.
func HandleProfile(args Args) {
	if err := runProfile(args); err != nil {
		FailAndExit(err)
	}
}

func runProfile(args Args) error {
	parser := NewArgParser(args.Raw)

	store, err := openStore()
	if err != nil {
		return err
	}

	switch parser.Subcommand() {
	case "", "show":
		p, err := store.LoadProfile()
		if err != nil {
			return err
		}
		printProfile(p)
		return nil

	case "set", "edit":
		return profileSet(parser)

	default:
		return fmt.Errorf("unknown profile subcommand: %s", parser.Subcommand())
	}
}

// profileSet applies flag edits on top of the stored profile. Only flags
// that were given change anything; Normalize fills in bad values.
func profileSet(parser *ArgParser) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	p, err := store.LoadProfile()
	if err != nil {
		return err
	}

	if v := parser.Flag("name"); v != "" {
		p.Name = v
	}
	if v := parser.IntFlag(-1, "age"); v >= 0 {
		p.Age = v
	}
	if v := parser.Flag("pronouns"); v != "" {
		p.Pronouns = v
	}
	if v := parser.Flag("goals"); v != "" {
		p.Goals = splitGoals(v)
	}
	if v := parser.Flag("tone"); v != "" {
		tone := model.Tone(strings.ToLower(v))
		if !tone.Valid() {
			return fmt.Errorf("tone must be warm, neutral, or direct")
		}
		p.Preferences.Tone = tone
	}
	if v := parser.Flag("depth"); v != "" {
		depth := model.Depth(strings.ToLower(v))
		if !depth.Valid() {
			return fmt.Errorf("depth must be brief, balanced, or in-depth")
		}
		p.Preferences.Depth = depth
	}

	p.Normalize()
	if err := store.SaveProfile(p); err != nil {
		return err
	}

	fmt.Println(SuccessStyle.Render("[Profile saved]"))
	printProfile(p)
	return nil
}

// splitGoals splits a comma-separated goals string, dropping empties.
func splitGoals(s string) []string {
	parts := strings.Split(s, ",")
	goals := make([]string, 0, len(parts))
	for _, part := range parts {
		if g := strings.TrimSpace(part); g != "" {
			goals = append(goals, g)
		}
	}
	return goals
}
