// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the command-line interface for haven.
// This file contains shared helper functions used across multiple commands.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/haven-tui/internal/chat"
	"github.com/jeranaias/haven-tui/internal/completion"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// =============================================================================
// RUNTIME WIRING
// =============================================================================

// openStore opens the slot store under ~/.haven/state. When HAVEN_PASSPHRASE
// is set, slots are sealed at rest with a key derived from it.
func openStore() (*storage.Store, error) {
	store, err := storage.NewStore()
	if err != nil {
		return nil, err
	}
	if pass := os.Getenv("HAVEN_PASSPHRASE"); pass != "" {
		store = store.WithSealer(storage.NewSealer(pass))
	}
	return store, nil
}

// loadConfig loads the configuration and applies the global --model override.
func loadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if args.Model != "" {
		cfg.Completion.Model = args.Model
	}
	return cfg, nil
}

// newController wires config, store, and completion client into a chat
// controller. Every chat-facing command goes through here.
func newController(args Args) (*chat.Controller, *config.Config, *storage.Store, error) {
	cfg, err := loadConfig(args)
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	ctrl, err := chat.New(cfg, store, completion.NewClient(cfg))
	if err != nil {
		return nil, nil, nil, err
	}
	return ctrl, cfg, store, nil
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

var inputReader = bufio.NewReader(os.Stdin)

// promptInput reads a line from stdin.
func promptInput(prompt string) string {
	fmt.Print(prompt)
	line, err := inputReader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// promptInputWithDefault reads with a default value shown.
func promptInputWithDefault(prompt, defaultVal string) string {
	if defaultVal != "" {
		prompt = fmt.Sprintf("%s [%s]: ", prompt, defaultVal)
	} else {
		prompt = prompt + ": "
	}

	input := promptInput(prompt)
	if input == "" {
		return defaultVal
	}
	return input
}

// promptYesNo prompts for a yes/no answer.
func promptYesNo(prompt string, defaultYes bool) bool {
	suffix := "[Y/n]"
	if !defaultYes {
		suffix = "[y/N]"
	}

	input := promptInput(fmt.Sprintf("%s %s: ", prompt, suffix))
	input = strings.ToLower(strings.TrimSpace(input))

	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

// =============================================================================
// ERROR HANDLING
// =============================================================================

// ERROR HANDLING: Errors must not be silently ignored

// Exit codes for command failures.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
)

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "usage:") || strings.Contains(errMsg, "unknown") {
		return ExitUsageError
	}
	if strings.Contains(errMsg, "config") || strings.Contains(errMsg, "settings") {
		return ExitConfigError
	}
	return ExitGeneralError
}

// FailAndExit displays an error and exits with an appropriate code.
// Use this for fatal errors in main command handlers.
func FailAndExit(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
	os.Exit(GetExitCode(err))
}
