// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the haven CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles the "haven chat" command which provides an interactive REPL
// for talking with the companion.
//
// Command: chat
// Short:   Start an interactive conversation
//
// Interactive Commands (during chat):
//   /mood N             Attach mood 1-10 to your next message
//   /reset              Clear conversation (asks for confirmation)
//   /resources          Show crisis support resources
//   /profile            Show your profile
//   /help, /h           Show available commands
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/haven-tui/internal/chat"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/safety"
	"github.com/jeranaias/haven-tui/internal/storage"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "input_history")

	c := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history to file with secure permissions.
// SECURITY: 0600 because typed lines are conversation content.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// chatSession holds the state for one interactive session.
type chatSession struct {
	ctrl  *chat.Controller
	cfg   *config.Config
	theme string
	quiet bool

	// pendingMood is attached to the next send, then cleared. 0 = unset.
	pendingMood int

	input *ChatCLI
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command.
func HandleChat(args Args) {
	if err := runChat(args); err != nil {
		FailAndExit(err)
	}
}

func runChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	ctrl, cfg, store, err := newController(args)
	if err != nil {
		return err
	}

	theme, err := store.LoadTheme()
	if err != nil {
		theme = storage.DefaultTheme
	}

	session := &chatSession{
		ctrl:  ctrl,
		cfg:   cfg,
		theme: theme,
		quiet: args.Quiet,
		input: NewChatCLI(),
	}
	defer session.input.Close()

	if !session.quiet {
		printWelcome(session)
	}

	// Main REPL loop using liner for input history.
	// USABILITY: Provides readline-like line editing and history navigation.
	for {
		input, err := session.input.ReadInput(PromptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C or Ctrl+D - exit gracefully.
			fmt.Println()
			fmt.Println(DimStyle.Render("Take care. Haven is here when you need it."))
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			keepGoing, err := session.handleSlashCommand(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				fmt.Println(DimStyle.Render("Take care. Haven is here when you need it."))
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			fmt.Println(DimStyle.Render("Take care. Haven is here when you need it."))
			return nil
		}

		session.sendTurn(input)
	}
}

// sendTurn runs one conversation turn and displays the reply.
func (s *chatSession) sendTurn(text string) {
	mood := s.pendingMood
	s.pendingMood = 0

	msg, err := s.ctrl.SendMessage(context.Background(), text, mood)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return
	}
	if msg == nil {
		return
	}

	fmt.Println()
	fmt.Println(CompanionStyle.Render("Haven"))
	displayReply(msg.Content, s.theme)

	// The crisis reply is always followed by the resource panel so the
	// numbers are on screen without another command.
	if s.ctrl.CrisisActive() {
		printCrisisBanner()
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (keepGoing, error) where keepGoing=false means exit.
func (s *chatSession) handleSlashCommand(cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printChatHelp()
		return true, nil

	case "/mood":
		return true, s.handleMood(rest)

	case "/reset":
		if !promptYesNo("Clear the whole conversation? This cannot be undone", false) {
			fmt.Println(DimStyle.Render("[Kept]"))
			return true, nil
		}
		if err := s.ctrl.ResetHistory(); err != nil {
			return true, err
		}
		fmt.Println(SuccessStyle.Render("[Conversation cleared]"))
		fmt.Println()
		fmt.Println(CompanionStyle.Render("Haven"))
		displayReply(model.Greeting, s.theme)
		return true, nil

	case "/resources":
		printCrisisBanner()
		return true, nil

	case "/profile":
		printProfile(s.ctrl.Profile())
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printChatHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleMood parses and stores the mood for the next message.
func (s *chatSession) handleMood(rest []string) error {
	if len(rest) == 0 {
		if s.pendingMood > 0 {
			fmt.Printf("%s mood %d/10 will be attached to your next message\n",
				InfoStyle.Render("[Mood]"), s.pendingMood)
		} else {
			fmt.Println(InfoStyle.Render("[Mood]") + " no mood set. Usage: /mood N (1-10)")
		}
		return nil
	}

	n, err := strconv.Atoi(rest[0])
	if err != nil || n < 1 || n > 10 {
		return fmt.Errorf("mood must be a number from 1 to 10")
	}
	s.pendingMood = n
	fmt.Printf("%s %d/10 noted for your next message\n", InfoStyle.Render("[Mood]"), n)
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the session banner and the latest exchange.
func printWelcome(s *chatSession) {
	fmt.Println()
	fmt.Println(TitleStyle.Render("haven"))
	fmt.Println(DimStyle.Render("A private space to talk. Nothing you say leaves this machine"))
	fmt.Println(DimStyle.Render("except the messages sent to your configured endpoint."))
	fmt.Println(RenderSeparator(40))
	fmt.Println()

	mode := "direct"
	if s.cfg.Completion.UseProxy {
		mode = "proxy (local relay)"
	}
	fmt.Printf("%s %s\n", LabelStyle.Render("Model:"), ValueStyle.Render(s.cfg.Completion.Model))
	fmt.Printf("%s %s\n", LabelStyle.Render("Mode:"), ValueStyle.Render(mode))
	if !s.cfg.Completion.UseProxy && !s.cfg.HasAPIKey() {
		fmt.Printf("%s %s\n", LabelStyle.Render("Key:"),
			WarningStyle.Render("not configured - run 'haven setup'"))
	}
	fmt.Println()

	// Show where the conversation left off.
	h := s.ctrl.History()
	if last := h.Last(); last != nil {
		if h.Len() == 1 {
			fmt.Println(CompanionStyle.Render("Haven"))
			displayReply(last.Content, s.theme)
		} else {
			fmt.Printf("%s %d messages so far. Last from %s: %s\n",
				DimStyle.Render("[Resumed]"), h.Len(),
				last.Role.DisplayName(), DimStyle.Render(last.Preview(60)))
		}
	}

	fmt.Println(DimStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available slash commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(TitleStyle.Render("Commands"))

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/mood N", "Attach mood 1-10 to your next message"},
		{"/reset", "Clear the conversation (asks first)"},
		{"/resources", "Show crisis support resources"},
		{"/profile", "Show your profile"},
		{"/help, /h", "Show this help"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			InfoStyle.Render(fmt.Sprintf("%-12s", c.cmd)),
			DimStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(DimStyle.Render("Tip: Ctrl+D exits"))
	fmt.Println()
}

// printCrisisBanner prints the static crisis resource panel, wrapped to the
// terminal so numbers never run off screen.
func printCrisisBanner() {
	fmt.Println()
	fmt.Println(RenderConditional(CrisisStyle, WrapText(safety.Resources, 0)))
	fmt.Println()
}

// printProfile prints the profile in label/value rows.
func printProfile(p *model.Profile) {
	fmt.Println()
	fmt.Println(TitleStyle.Render("Your Profile"))
	fmt.Printf("%s %s\n", RenderLabel("Name:", 10), ValueStyle.Render(p.Name))
	if p.Age > 0 {
		fmt.Printf("%s %d\n", RenderLabel("Age:", 10), p.Age)
	}
	if p.Pronouns != "" {
		fmt.Printf("%s %s\n", RenderLabel("Pronouns:", 10), ValueStyle.Render(p.Pronouns))
	}
	if len(p.Goals) > 0 {
		fmt.Printf("%s %s\n", RenderLabel("Goals:", 10), ValueStyle.Render(strings.Join(p.Goals, "; ")))
	}
	fmt.Printf("%s %s\n", RenderLabel("Tone:", 10), ValueStyle.Render(string(p.Preferences.Tone)))
	fmt.Printf("%s %s\n", RenderLabel("Depth:", 10), ValueStyle.Render(string(p.Preferences.Depth)))
	fmt.Println()
}
