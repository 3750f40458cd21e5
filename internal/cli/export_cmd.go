// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Export, import, and transcript command handlers.
//
// Command: export / import / transcript
//
// Examples:
//   haven export                      Write archive to the current directory
//   haven export --dir ./backup
//   haven import haven_export_x.json  Restore conversation + profile
//   haven transcript --dir ./out      Human-readable Markdown transcript
package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/export"
)

// HandleExport handles the "export" command.
func HandleExport(args Args) {
	if err := runExport(args); err != nil {
		FailAndExit(err)
	}
}

func runExport(args Args) error {
	parser := NewArgParser(args.Raw)
	dir := parser.Flag("dir", "d")
	if dir == "" {
		dir = "."
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
	history, err := store.LoadHistory()
	if err != nil {
		return err
	}

	// SECURITY: Build redacts the API key; the raw credential never
	// appears in an archive.
	archive := export.Build(cfg, profile, history)
	path, err := export.WriteFile(archive, dir)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", SuccessStyle.Render("[Exported]"), path)
	fmt.Println(DimStyle.Render("The API key is not included. Importing on another machine"))
	fmt.Println(DimStyle.Render("requires entering the key again."))
	return nil
}

// HandleImport handles the "import" command.
func HandleImport(args Args) {
	if err := runImport(args); err != nil {
		FailAndExit(err)
	}
}

func runImport(args Args) error {
	parser := NewArgParser(args.Raw)
	path := parser.Subcommand()
	if path == "" {
		return fmt.Errorf("usage: haven import FILE")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	// Parse validates before anything is touched: a malformed archive
	// leaves the current state exactly as it was.
	archive, err := export.Parse(data)
	if err != nil {
		return fmt.Errorf("invalid archive: %w", err)
	}

	if !promptYesNo(fmt.Sprintf("Replace the current conversation with %d archived messages?",
		len(archive.Messages)), false) {
		fmt.Println(DimStyle.Render("[Cancelled]"))
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}

	if err := export.Apply(archive, cfg, store); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Printf("%s %d messages restored\n", SuccessStyle.Render("[Imported]"), len(archive.Messages))
	if !cfg.HasAPIKey() {
		fmt.Println(WarningStyle.Render("No API key is set. Run 'haven setup' or 'haven config set api_key ...'"))
	}
	return nil
}

// HandleTranscript handles the "transcript" command.
func HandleTranscript(args Args) {
	if err := runTranscript(args); err != nil {
		FailAndExit(err)
	}
}

func runTranscript(args Args) error {
	parser := NewArgParser(args.Raw)
	dir := parser.Flag("dir", "d")
	if dir == "" {
		dir = "."
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	history, err := store.LoadHistory()
	if err != nil {
		return err
	}

	path, err := export.TranscriptToFile(history, dir)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", SuccessStyle.Render("[Written]"), path)
	return nil
}
