// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat for terminals where the TUI is not wanted.
//
// Command: chat
// Short:   Chat with the Ghost in a line-based REPL
// Aliases: repl
//
// Examples:
//   ghost chat                        Chat with the configured provider
//   ghost --provider ollama chat      Chat with a local model
//
// Interactive Commands (during chat):
//   /help                Show available commands
//   /new                 Start a new conversation
//   /save                Save the conversation now
//   /resume <id>         Continue a saved conversation
//   /sources [query]     Search cited sources
//   /export [md|html|json]
//   /quit                Exit chat
//   1-9                  Ask an example prompt (empty conversation only)
//   Tab                  Complete commands and arguments
//   Ctrl+C               Cancel the reply being streamed, or exit at the prompt
//   Ctrl+D               Exit chat

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/commands"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/config"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/export"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/stream"
)

const (
	chatTitle    = "FREE FIRE Ghost Assistant"
	chatSubtitle = "Powered by GHOST PLAYS"
	chatCredit   = "Developed by Bilal (GHOST PLAYS) | YouTube: @ghostplays143 | TikTok: @ghostplays13"
	chatPrompt   = "you> "
)

// =============================================================================
// INPUT WITH HISTORY
// =============================================================================

// ChatCLI provides line editing, history and tab completion for chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI that completes with completer and keeps
// history in the config directory.
func NewChatCLI(completer *commands.Completer) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if completer != nil {
		line.SetCompleter(completer.CompleteLine)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
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

// SaveHistory writes command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() error {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = c.line.WriteHistory(f)
	return err
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() error {
	err := c.SaveHistory()
	c.line.Close()
	return err
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// chatSession is the state of one chat run.
type chatSession struct {
	app      *App
	provider llm.Provider
	parser   *commands.Parser
	registry *commands.Registry
	printer  *Printer
	out      io.Writer

	mu  sync.Mutex // guards acc against the signal goroutine
	acc *stream.Accumulator
}

func (s *chatSession) setAccumulator(acc *stream.Accumulator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acc != nil {
		s.acc.Close()
	}
	s.acc = acc
}

// cancelReply cancels the reply in flight, if any.
func (s *chatSession) cancelReply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acc != nil {
		s.acc.Cancel()
	}
}

func (a *App) runChat(ctx context.Context) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}
	provider, err := a.Connect(a.Config)
	if err != nil {
		return err
	}
	if err := checkProvider(ctx, provider); err != nil {
		return err
	}

	registry := commands.NewRegistry()
	s := &chatSession{
		app:      a,
		provider: provider,
		parser:   commands.NewParser(registry),
		registry: registry,
		out:      a.Out,
	}
	s.setAccumulator(s.newAccumulator(model.NewTranscript()))
	defer s.setAccumulator(nil)
	if err := s.acc.InitErr(); err != nil {
		return err
	}

	completer := commands.NewCompleter(registry)
	completer.ConversationsFn = a.conversationInfos
	input := NewChatCLI(completer)
	defer func() {
		if err := input.Close(); err != nil {
			a.Log.Warn("save chat history", "err", err)
		}
	}()

	// Ctrl+C at the prompt is handled by liner; while a reply streams the
	// terminal is in cooked mode and it arrives as a signal.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		for {
			select {
			case <-sigs:
				s.cancelReply()
			case <-ctx.Done():
				return
			}
		}
	}()

	s.printWelcome()
	for {
		line, err := input.ReadInput(UserStyle.Render(chatPrompt))
		if err != nil {
			fmt.Fprintln(s.out)
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				s.printGoodbye()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if commands.IsCommand(line) {
			if s.runCommand(ctx, line) {
				s.printGoodbye()
				return nil
			}
			continue
		}
		if prompt, ok := s.examplePrompt(line); ok {
			fmt.Fprintln(s.out, DimStyle.Render("> "+prompt))
			line = prompt
		}
		s.send(ctx, line)
	}
}

// newAccumulator starts a session over t, seeding the provider with t's
// history.
func (s *chatSession) newAccumulator(t *model.Transcript) *stream.Accumulator {
	cfg := s.app.Config
	return stream.New(t, s.provider, cfg.Session(stream.HistoryFromEntries(t.Entries())), stream.Options{
		IdleTimeout: cfg.IdleTimeout(),
		OnFragment: func(text string) {
			if s.printer != nil {
				s.printer.Fragment(text)
			}
		},
		Logger: s.app.Log,
	})
}

// send streams one reply to the terminal.
func (s *chatSession) send(ctx context.Context, input string) {
	s.printer = s.app.newPrinter()
	defer func() { s.printer = nil }()

	fmt.Fprintln(s.out, GhostStyle.Render(model.RoleModel.DisplayName()))
	err := runExchange(ctx, s.acc, input)
	s.printer.Flush()

	if err != nil {
		if errors.Is(err, stream.ErrCancelled) {
			fmt.Fprintln(s.out, WarningStyle.Render("[Cancelled]"))
		} else {
			msg := s.acc.Message()
			if msg == "" {
				msg = "Error: " + err.Error()
			}
			fmt.Fprintln(s.out, ErrorStyle.Render(msg))
		}
		fmt.Fprintln(s.out)
		return
	}

	t := s.acc.Transcript()
	entry, _ := t.Last()
	printSources(s.out, entry.Sources, s.app.styled())
	fmt.Fprintln(s.out)
	s.app.persist(ctx, t, entry, s.provider)
}

// examplePrompt maps a bare number to an example prompt while the
// conversation is empty.
func (s *chatSession) examplePrompt(line string) (string, bool) {
	if !s.acc.Transcript().IsEmpty() {
		return "", false
	}
	n, err := strconv.Atoi(line)
	prompts := s.app.Config.Assistant.ExamplePrompts
	if err != nil || n < 1 || n > len(prompts) {
		return "", false
	}
	return prompts[n-1], true
}

func (s *chatSession) printWelcome() {
	fmt.Fprintln(s.out, TitleStyle.Render(chatTitle)+"  "+DimStyle.Render(chatSubtitle))
	fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("%s/%s · /help for commands · Ctrl+D to exit",
		s.provider.Name(), s.provider.Model())))
	fmt.Fprintln(s.out, DimStyle.Render(chatCredit))
	fmt.Fprintln(s.out)
	s.printPrompts()
}

func (s *chatSession) printPrompts() {
	prompts := s.app.Config.Assistant.ExamplePrompts
	if len(prompts) == 0 {
		return
	}
	fmt.Fprintln(s.out, "How can I help you, player? Type a number to ask an example:")
	for i, p := range prompts {
		fmt.Fprintf(s.out, "  %s %s\n", GhostStyle.Render(strconv.Itoa(i+1)), p)
	}
	fmt.Fprintln(s.out)
}

func (s *chatSession) printGoodbye() {
	n := s.acc.Transcript().Len()
	if n == 0 {
		fmt.Fprintln(s.out, DimStyle.Render("GG, player."))
		return
	}
	fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("GG, player. %d messages this session.", n)))
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// runCommand executes a slash command and reports whether chat should end.
func (s *chatSession) runCommand(ctx context.Context, input string) bool {
	result := s.parser.Parse(input)
	if result.Error != nil {
		s.notice(ErrorStyle, result.Error.Error())
		return false
	}
	s.app.Log.Debug("slash command", "command", result.Command.Name)

	switch result.Command.Name {
	case commands.Quit:
		return true
	case commands.Help:
		fmt.Fprintln(s.out, renderMarkdown(s.helpMarkdown(), wrapWidth(), s.app.styled()))
	case commands.New:
		s.newConversation()
	case commands.Save:
		s.save(ctx)
	case commands.Resume:
		s.resume(result.Arg(0))
	case commands.Sources:
		s.sources(ctx, result.Arg(0))
	case commands.Export:
		s.export(result.Arg(0))
	default:
		s.notice(WarningStyle, "command not available here: "+result.Command.Name)
	}
	return false
}

func (s *chatSession) helpMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Ghost Assistant help\n\n")
	sb.WriteString(s.registry.HelpText())
	sb.WriteString("## Keys\n\n| Key | Action |\n|---|---|\n")
	sb.WriteString("| `Tab` | Complete commands and arguments |\n")
	sb.WriteString("| `Up/Down` | Input history |\n")
	sb.WriteString("| `Ctrl+C` | Cancel the reply, or exit at the prompt |\n")
	sb.WriteString("| `Ctrl+D` | Exit |\n")
	return sb.String()
}

func (s *chatSession) notice(style lipgloss.Style, text string) {
	fmt.Fprintln(s.out, style.Render(text))
}

func (s *chatSession) newConversation() {
	if err := s.acc.Transcript().Reset(); err != nil {
		s.notice(ErrorStyle, err.Error())
		return
	}
	if err := s.acc.Restart(s.provider, s.app.Config.Session(nil)); err != nil {
		s.notice(ErrorStyle, err.Error())
		return
	}
	s.notice(SuccessStyle, "New conversation")
	s.printPrompts()
}

func (s *chatSession) save(ctx context.Context) {
	t := s.acc.Transcript()
	if t.IsEmpty() {
		s.notice(WarningStyle, "Nothing to save yet")
		return
	}
	store, err := s.app.Store()
	if err != nil {
		s.notice(ErrorStyle, err.Error())
		return
	}
	id, err := store.SaveTranscript(t, s.provider.Name(), s.provider.Model())
	if err != nil {
		s.notice(ErrorStyle, "Save failed: "+err.Error())
		return
	}
	if lib, err := s.app.Library(); err == nil {
		if err := lib.RecordTranscript(ctx, t); err != nil {
			s.app.Log.Warn("record sources", "id", id, "err", err)
		}
	}
	s.notice(SuccessStyle, "Saved "+id)
}

func (s *chatSession) resume(ref string) {
	store, err := s.app.Store()
	if err != nil {
		s.notice(ErrorStyle, err.Error())
		return
	}
	conv, err := store.Resolve(ref)
	if err != nil {
		s.notice(ErrorStyle, fmt.Sprintf("Cannot resume %q: %v", ref, err))
		return
	}

	s.setAccumulator(s.newAccumulator(conv.Transcript()))
	if err := s.acc.InitErr(); err != nil {
		s.notice(ErrorStyle, err.Error())
		return
	}
	s.app.Log.Info("conversation resumed", "id", conv.ID, "messages", len(conv.Messages))
	s.notice(SuccessStyle, fmt.Sprintf("Resumed: %s (%d messages)", conv.Title(), len(conv.Messages)))
}

func (s *chatSession) sources(ctx context.Context, query string) {
	lib, err := s.app.Library()
	if err != nil {
		s.notice(ErrorStyle, err.Error())
		return
	}
	found, err := lib.Search(ctx, query, sourcesPanelLimit)
	if err != nil {
		s.notice(ErrorStyle, "Source search failed: "+err.Error())
		return
	}
	if len(found) == 0 {
		s.notice(WarningStyle, noSourcesMessage(query))
		return
	}
	printSourceList(s.out, found, s.app.styled())
}

func (s *chatSession) export(format string) {
	f, err := export.ParseFormat(format)
	if err != nil {
		s.notice(ErrorStyle, err.Error())
		return
	}
	t := s.acc.Transcript()
	if t.IsEmpty() {
		s.notice(WarningStyle, "Nothing to export yet")
		return
	}
	opts := export.DefaultOptions()
	opts.Logger = s.app.Log
	path, err := export.ExportTranscript(t, s.provider.Name(), s.provider.Model(), f, opts)
	if err != nil {
		s.notice(ErrorStyle, "Export failed: "+err.Error())
		return
	}
	s.notice(SuccessStyle, "Exported to "+path)
}
