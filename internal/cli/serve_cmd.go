// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve_cmd.go - Local relay command handler.
//
// Command: serve
// Short:   Run the key-holding relay for proxy mode
// Aliases: relay
//
// Examples:
//   HAVEN_API_KEY=sk-... haven serve
//   haven serve --addr 127.0.0.1:9000
//
// The relay is the server side of proxy mode: clients post the wire
// contract without credentials and the relay injects the key upstream.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/server"
)

// HandleServe handles the "serve" command.
func HandleServe(args Args) {
	if err := runServe(args); err != nil {
		FailAndExit(err)
	}
}

func runServe(args Args) error {
	parser := NewArgParser(args.Raw)
	addr := parser.Flag("addr", "a")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if !cfg.HasAPIKey() {
		fmt.Println(WarningStyle.Render("No API key configured. The relay will answer 503 until one is set."))
		fmt.Println(DimStyle.Render("Set HAVEN_API_KEY or run 'haven config set api_key ...'"))
	}

	logger := log.New(os.Stderr, "haven-relay ", log.LstdFlags)
	relay := server.NewRelay(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return relay.ListenAndServe(ctx, addr)
}
