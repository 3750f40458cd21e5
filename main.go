// haven - a private terminal companion that listens.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"github.com/jeranaias/haven-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdSend:
		cli.HandleSend(args)
	case cli.CmdProfile:
		cli.HandleProfile(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdSetup:
		cli.HandleSetup(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdExport:
		cli.HandleExport(args)
	case cli.CmdImport:
		cli.HandleImport(args)
	case cli.CmdTranscript:
		cli.HandleTranscript(args)
	case cli.CmdJournal:
		cli.HandleJournal(args)
	case cli.CmdSearch:
		cli.HandleSearch(args)
	case cli.CmdServe:
		cli.HandleServe(args)
	case cli.CmdReset:
		cli.HandleReset(args)
	case cli.CmdResources:
		cli.HandleResources(args)
	case cli.CmdTheme:
		cli.HandleTheme(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		cli.PrintUsage()
	}
}
