// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing and dispatch for ghost.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
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
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdSessions
	CmdShow
	CmdExport
	CmdSources
	CmdConfig
	CmdVersion
	CmdHelp
)

// commandNames maps every accepted spelling to its command.
var commandNames = map[string]Command{
	"tui":      CmdTUI,
	"chat":     CmdChat,
	"repl":     CmdChat,
	"ask":      CmdAsk,
	"sessions": CmdSessions,
	"session":  CmdSessions,
	"ls":       CmdSessions,
	"show":     CmdShow,
	"export":   CmdExport,
	"sources":  CmdSources,
	"config":   CmdConfig,
	"version":  CmdVersion,
	"help":     CmdHelp,
}

func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdSessions:
		return "sessions"
	case CmdShow:
		return "show"
	case CmdExport:
		return "export"
	case CmdSources:
		return "sources"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Provider    string
	Model       string
	ConfigPath  string
	NoAltScreen bool
	Plain       bool
	Quiet       bool
	JSON        bool

	// Command-specific
	Format string
	Output string
	Limit  int
	Yes    bool

	// Positional arguments after the command name
	Raw []string
}

// Arg returns positional argument i, or "" when absent.
func (a Args) Arg(i int) string {
	if i < len(a.Raw) {
		return a.Raw[i]
	}
	return ""
}

const usageText = `ghost - FREE FIRE Ghost Assistant

An AI assistant for Free Fire players: strategy, characters, weapons and
events, grounded in web search with the sources cited under each answer.

Usage:
  ghost                          Start the chat TUI (default)
  ghost chat                     Line-mode chat in the terminal
  ghost ask "question"           Ask a single question and print the answer
  ghost sessions                 List saved conversations
  ghost sessions delete <id>     Delete a saved conversation
  ghost show <id>                Print a saved conversation
  ghost export <id>              Export a conversation (md, html, json)
  ghost sources [query]          Search every source the Ghost has cited
  ghost config [show|path|init|get|set]
                                 Inspect or edit the configuration
  ghost version                  Show version information
  ghost help                     Show this help

Conversations can be given by ID, ID prefix, or list number ("1" is the
most recent). In the TUI and chat, /resume <id> continues one.

Global flags:
  --provider NAME     Chat backend: gemini, openrouter or ollama
  -m, --model NAME    Model for the selected provider
  -c, --config PATH   Config file (default ~/.ghost/config.toml)
  --no-alt-screen     Run the TUI inline instead of the alternate screen
  --plain             Plain text output; no colors or markdown styling
  -q, --quiet         Print only the answer
  --json              JSON output (sessions, show, sources, version)

Command flags:
  -f, --format FMT    Export format: md, html or json (default md)
  -o, --output PATH   Export file or directory (default current directory)
  -n, --limit N       Maximum results for sessions and sources
  -y, --yes           Do not ask for confirmation

Environment:
  GEMINI_API_KEY, OPENROUTER_API_KEY, OLLAMA_HOST, GHOST_PROVIDER,
  GHOST_MODEL, GHOST_LOG_LEVEL, GHOST_HOME, NO_COLOR
  Variables may also be set in ./.env or ~/.ghost/.env.

Examples:
  ghost ask "Best character combo for rank push?"
  ghost --provider ollama chat
  ghost export 1 --format html -o ~/ghost-notes
  ghost sources "awm"

Developed by Bilal (GHOST PLAYS)
Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// VersionData is the JSON form of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer, jsonMode bool) error {
	if jsonMode {
		return writeJSON(w, VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		})
	}
	fmt.Fprintf(w, "ghost version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s\n", runtime.Version())
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

// newFlagSet declares every flag. Flags may appear before or after the
// command name.
func newFlagSet(args *Args) *pflag.FlagSet {
	fs := pflag.NewFlagSet("ghost", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.StringVar(&args.Provider, "provider", "", "chat backend: gemini, openrouter or ollama")
	fs.StringVarP(&args.Model, "model", "m", "", "model for the selected provider")
	fs.StringVarP(&args.ConfigPath, "config", "c", "", "config file")
	fs.BoolVar(&args.NoAltScreen, "no-alt-screen", false, "run the TUI inline")
	fs.BoolVar(&args.Plain, "plain", false, "plain text output")
	fs.BoolVarP(&args.Quiet, "quiet", "q", false, "print only the answer")
	fs.BoolVar(&args.JSON, "json", false, "JSON output")

	fs.StringVarP(&args.Format, "format", "f", "md", "export format")
	fs.StringVarP(&args.Output, "output", "o", "", "export file or directory")
	fs.IntVarP(&args.Limit, "limit", "n", 20, "maximum results")
	fs.BoolVarP(&args.Yes, "yes", "y", false, "skip confirmation")

	fs.BoolP("help", "h", false, "show help")
	fs.BoolP("version", "v", false, "show version")
	return fs
}

// Parse parses command-line arguments (without the program name) and
// returns the command and its arguments.
func Parse(argv []string) (Command, Args, error) {
	var args Args
	fs := newFlagSet(&args)
	if err := fs.Parse(argv); err != nil {
		return CmdHelp, args, &UsageError{Message: err.Error()}
	}
	if args.Limit <= 0 {
		return CmdHelp, args, &UsageError{Message: fmt.Sprintf("--limit must be positive, got %d", args.Limit)}
	}

	rest := fs.Args()
	if help, _ := fs.GetBool("help"); help {
		return CmdHelp, args, nil
	}
	if version, _ := fs.GetBool("version"); version {
		return CmdVersion, args, nil
	}
	if len(rest) == 0 {
		return CmdTUI, args, nil
	}

	name := strings.ToLower(rest[0])
	args.Raw = rest[1:]
	cmd, ok := commandNames[name]
	if !ok {
		return CmdHelp, args, &UsageError{
			Message:    fmt.Sprintf("unknown command %q", rest[0]),
			Suggestion: SuggestCommand(name),
		}
	}
	return cmd, args, nil
}

// =============================================================================
// EXECUTION
// =============================================================================

// Execute parses argv, runs the command and returns the process exit code.
func Execute(ctx context.Context, argv []string) int {
	cmd, args, err := Parse(argv)
	if err != nil {
		DisplayError(os.Stderr, err)
		return GetExitCode(err)
	}

	switch cmd {
	case CmdHelp:
		PrintUsage(os.Stdout)
		return ExitSuccess
	case CmdVersion:
		if err := PrintVersion(os.Stdout, args.JSON); err != nil {
			DisplayError(os.Stderr, err)
			return GetExitCode(err)
		}
		return ExitSuccess
	}

	app, err := NewApp(args)
	if err != nil {
		DisplayError(os.Stderr, err)
		return GetExitCode(err)
	}
	defer app.Close()

	if err := app.Run(ctx, cmd); err != nil {
		app.Log.Error("command failed", "command", cmd.String(), "err", err)
		DisplayError(app.Err, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// Run dispatches cmd.
func (a *App) Run(ctx context.Context, cmd Command) error {
	a.Log.Debug("command", "command", cmd.String(), "args", len(a.Args.Raw))

	switch cmd {
	case CmdTUI:
		return a.runTUI(ctx)
	case CmdChat:
		return a.runChat(ctx)
	case CmdAsk:
		return a.runAsk(ctx)
	case CmdSessions:
		return a.runSessions()
	case CmdShow:
		return a.runShow()
	case CmdExport:
		return a.runExport()
	case CmdSources:
		return a.runSources(ctx)
	case CmdConfig:
		return a.runConfig()
	case CmdVersion:
		return PrintVersion(a.Out, a.Args.JSON)
	case CmdHelp:
		PrintUsage(a.Out)
		return nil
	}
	return &UsageError{Message: "unsupported command " + cmd.String()}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
