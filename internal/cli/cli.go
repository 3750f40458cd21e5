// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for haven.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdSend
	CmdProfile
	CmdConfig
	CmdSetup
	CmdStatus
	CmdExport
	CmdImport
	CmdTranscript
	CmdJournal
	CmdSearch
	CmdServe
	CmdReset
	CmdResources
	CmdTheme
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string

	// Remaining args after global flag parsing; command handlers run these
	// through ArgParser for their own flags and subcommands.
	Raw []string
}

const usageText = `haven - a terminal companion that listens

Haven is a private, single-user chat companion. Conversations stay on
this machine; the only thing that leaves is the message list sent to
the completion endpoint you configure.

Usage:
  haven                      Start interactive chat (default)
  haven chat                 Start interactive chat
  haven send "message"       Send one message and print the reply
    --mood N                 Attach a mood rating 1-10
  haven profile [show|set]   View or edit your profile
  haven config [show|set]    View or edit settings
  haven setup                First-run wizard (endpoint, key, profile)
  haven status               Show configuration and conversation status
  haven export [--dir DIR]   Export conversation + profile as JSON
  haven import FILE          Restore from an exported archive
  haven transcript [--dir DIR] Write a Markdown transcript
  haven journal [write|show|clear] Private journal entries
  haven search TERM          Search past messages
    --limit N                Maximum results (default 20)
  haven serve [--addr HOST:PORT] Run the local key-holding relay
  haven reset --confirm      Clear the conversation history
  haven resources            Show crisis support resources
  haven theme [dark|light|auto]  View or set the display theme
  haven version              Show version
  haven help                 Show this help

Profile Commands:
  haven profile show              Show current profile
  haven profile set --name NAME   Set display name
    --age N                       Set age (optional)
    --pronouns TEXT               Set pronouns (optional)
    --goals "a, b"                Comma-separated goals
    --tone warm|neutral|direct    Reply tone
    --depth brief|balanced|in-depth  Reply depth

Config Commands:
  haven config show               Show settings (API key redacted)
  haven config set KEY VALUE      Set a setting
    Keys: api_key, endpoint, model, use_proxy, proxy_url,
          temperature, top_p, max_tokens
  haven config path               Show config file location

Interactive Commands (during chat):
  /mood N             Attach mood 1-10 to your next message
  /reset              Clear conversation (asks for confirmation)
  /resources          Show crisis support resources
  /profile            Show your profile
  /help, /h           Show available commands
  /quit, /q           Exit chat
  Ctrl+D              Exit chat

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output
  --model NAME    Override configured model for this run

Examples:
  haven                               Start chatting
  haven send "rough day at work"      One-shot message
  haven send "feeling better" --mood 7
  haven profile set --name Sam --tone direct
  haven config set use_proxy true     Route through the local relay
  haven serve                         Run the relay (holds the API key)
  haven export --dir ./backup         Archive the conversation
  haven search "sleep" --limit 10     Find past messages

The conversation, profile, and journal are stored under ~/.haven.
Set HAVEN_PASSPHRASE to encrypt them at rest.

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("haven version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	// No command: default to interactive chat.
	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsedArgs

	case "send", "say":
		return CmdSend, parsedArgs

	case "profile":
		return CmdProfile, parsedArgs

	case "config":
		return CmdConfig, parsedArgs

	case "setup", "init":
		return CmdSetup, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "export":
		return CmdExport, parsedArgs

	case "import", "restore":
		return CmdImport, parsedArgs

	case "transcript":
		return CmdTranscript, parsedArgs

	case "journal":
		return CmdJournal, parsedArgs

	case "search", "find":
		return CmdSearch, parsedArgs

	case "serve", "relay":
		return CmdServe, parsedArgs

	case "reset", "clear":
		return CmdReset, parsedArgs

	case "resources", "support":
		return CmdResources, parsedArgs

	case "theme":
		return CmdTheme, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown word - treat the whole line as a message to send.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdSend, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--verbose":
			parsedArgs.Verbose = true
		case "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
