// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers for the haven CLI.
//
// Command: config
// Short:   View or edit settings
//
// Examples:
//   haven config show
//   haven config set model gpt-4o-mini
//   haven config set use_proxy true
//   haven config set temperature 0.5
//   haven config path
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/haven-tui/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) {
	if err := runConfig(args); err != nil {
		FailAndExit(err)
	}
}

func runConfig(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return configShow()
	case "set":
		rest := parser.Rest()
		if len(rest) < 2 {
			return fmt.Errorf("usage: haven config set KEY VALUE")
		}
		return configSet(rest[0], strings.Join(rest[1:], " "))
	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s", parser.Subcommand())
	}
}

// configShow displays settings with the API key redacted.
// SECURITY: the raw key never reaches stdout.
func configShow() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	r := cfg.Redacted()

	fmt.Println()
	fmt.Println(TitleStyle.Render("Settings"))

	mode := "direct"
	if r.Completion.UseProxy {
		mode = "proxy"
	}

	fmt.Printf("%s %s\n", LabelStyle.Render("Mode:"), ValueStyle.Render(mode))
	fmt.Printf("%s %s\n", LabelStyle.Render("Endpoint:"), ValueStyle.Render(r.Completion.Endpoint))
	fmt.Printf("%s %s\n", LabelStyle.Render("Proxy URL:"), ValueStyle.Render(r.Completion.ProxyURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("Model:"), ValueStyle.Render(r.Completion.Model))
	if r.Completion.APIKey != "" {
		fmt.Printf("%s %s\n", LabelStyle.Render("API key:"), DimStyle.Render(r.Completion.APIKey))
	} else {
		fmt.Printf("%s %s\n", LabelStyle.Render("API key:"), WarningStyle.Render("not set"))
	}
	fmt.Println()
	fmt.Printf("%s %.2f\n", LabelStyle.Render("Temperature:"), r.Generation.Temperature)
	fmt.Printf("%s %.2f\n", LabelStyle.Render("Top-p:"), r.Generation.TopP)
	fmt.Printf("%s %d\n", LabelStyle.Render("Max tokens:"), r.Generation.MaxTokens)
	fmt.Println()
	return nil
}

// configSet updates one setting and saves. Generation values are clamped by
// the config layer rather than rejected.
func configSet(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch strings.ToLower(key) {
	case "api_key", "key":
		cfg.Completion.APIKey = strings.TrimSpace(value)
	case "endpoint":
		cfg.Completion.Endpoint = value
	case "model":
		cfg.Completion.Model = value
	case "proxy_url":
		cfg.Completion.ProxyURL = value
	case "use_proxy", "proxy":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("use_proxy must be true or false")
		}
		cfg.Completion.UseProxy = b
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number")
		}
		cfg.Generation.Temperature = f
	case "top_p":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("top_p must be a number")
		}
		cfg.Generation.TopP = f
	case "max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_tokens must be an integer")
		}
		cfg.Generation.MaxTokens = n
	default:
		return fmt.Errorf("unknown setting: %s (see 'haven help' for keys)", key)
	}

	cfg.Clamp()
	if err := cfg.Save(); err != nil {
		return err
	}

	if strings.ToLower(key) == "api_key" || strings.ToLower(key) == "key" {
		fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[Saved]"), key, config.RedactedKey)
	} else {
		fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[Saved]"), key, value)
	}
	return nil
}
