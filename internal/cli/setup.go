// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - First-run wizard for haven.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: setup
// Short:   First-run setup wizard
// Aliases: init
//
// The setup wizard walks through:
//   1. How to reach the completion endpoint (direct or via the local relay)
//   2. API key entry (hidden input, direct mode only)
//   3. Model selection
//   4. A short profile (name, tone, depth)
package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/model"
)

// HandleSetup handles the "setup" command.
func HandleSetup(args Args) {
	if err := runSetup(args); err != nil {
		FailAndExit(err)
	}
}

func runSetup(args Args) error {
	if err := RequiresTTY("run setup"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	profile, err := store.LoadProfile()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("haven Setup")
	fmt.Println(strings.Repeat("=", 11))
	fmt.Println()

	// Step 1: Connection mode
	fmt.Println("Step 1: Connection")
	fmt.Println(strings.Repeat("-", 18))
	fmt.Println("How should haven reach the completion endpoint?")
	fmt.Println("  [1] Direct - haven holds the API key and calls the endpoint")
	fmt.Println("  [2] Proxy  - a local relay ('haven serve') holds the key")
	fmt.Println()

	choice := promptInputWithDefault("Select mode", pick(cfg.Completion.UseProxy, "2", "1"))
	cfg.Completion.UseProxy = choice == "2"
	fmt.Println()

	// Step 2: Credentials and endpoint
	if cfg.Completion.UseProxy {
		fmt.Println("Step 2: Relay")
		fmt.Println(strings.Repeat("-", 12))
		cfg.Completion.ProxyURL = promptInputWithDefault("Relay URL", cfg.Completion.ProxyURL)
		fmt.Println("  The relay needs the key: set HAVEN_API_KEY where 'haven serve' runs.")
	} else {
		fmt.Println("Step 2: Endpoint")
		fmt.Println(strings.Repeat("-", 15))
		cfg.Completion.Endpoint = promptInputWithDefault("Endpoint URL", cfg.Completion.Endpoint)
		key := promptSecure("API key (press Enter to keep current)")
		if key != "" {
			cfg.Completion.APIKey = key
		}
	}
	fmt.Println()

	// Step 3: Model
	fmt.Println("Step 3: Model")
	fmt.Println(strings.Repeat("-", 13))
	cfg.Completion.Model = promptInputWithDefault("Model", cfg.Completion.Model)
	fmt.Println()

	// Step 4: Profile
	fmt.Println("Step 4: About you")
	fmt.Println(strings.Repeat("-", 17))
	fmt.Println("This shapes how the companion talks to you. Everything is optional.")
	profile.Name = promptInputWithDefault("What should I call you?", profile.Name)

	tone := promptInputWithDefault("Tone (warm/neutral/direct)", string(profile.Preferences.Tone))
	if t := model.Tone(strings.ToLower(tone)); t.Valid() {
		profile.Preferences.Tone = t
	}
	depth := promptInputWithDefault("Depth (brief/balanced/in-depth)", string(profile.Preferences.Depth))
	if d := model.Depth(strings.ToLower(depth)); d.Valid() {
		profile.Preferences.Depth = d
	}
	profile.Normalize()
	fmt.Println()

	// Save
	cfg.Clamp()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save configuration: %w", err)
	}
	if err := store.SaveProfile(profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	configPath, _ := config.ConfigPathTOML()
	fmt.Println("Setup Complete!")
	fmt.Println(strings.Repeat("=", 15))
	fmt.Printf("Config saved to %s\n", configPath)
	fmt.Println("Run 'haven' to start talking.")
	fmt.Println()
	return nil
}

// pick returns a when cond is true, else b.
func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// =============================================================================
// SECURE INPUT
// =============================================================================

var secureInputMutex sync.Mutex

// promptSecure prompts for sensitive input (API keys) without echoing.
// Uses golang.org/x/term for secure cross-platform input.
func promptSecure(prompt string) string {
	secureInputMutex.Lock()
	defer secureInputMutex.Unlock()

	if prompt != "" {
		fmt.Print(prompt)
		if !strings.HasSuffix(prompt, ": ") && !strings.HasSuffix(prompt, " ") {
			fmt.Print(": ")
		}
	}

	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return ""
	}
	fmt.Println() // newline after hidden input

	return strings.TrimSpace(string(keyBytes))
}
