// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Saved conversation commands: sessions, show and export.
//
// Examples:
//   ghost sessions                    List saved conversations, newest first
//   ghost sessions search awm         Conversations mentioning "awm"
//   ghost sessions delete 3 --yes     Delete the third most recent
//   ghost show 1                      Print the most recent conversation
//   ghost export 1 -f html -o notes/  Export it as HTML into notes/

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/commands"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/export"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/storage"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/util"
)

const summaryWidth = 50

// =============================================================================
// SESSIONS
// =============================================================================

func (a *App) runSessions() error {
	sub := strings.ToLower(a.Args.Arg(0))
	switch sub {
	case "", "list", "ls":
		if len(a.Args.Raw) > 1 {
			return ErrTooManyArguments("ghost sessions [list]")
		}
		return a.listSessions("")
	case "search", "find":
		query := strings.TrimSpace(strings.Join(a.Args.Raw[1:], " "))
		if query == "" {
			return ErrMissingArgument("query", "ghost sessions search <query>")
		}
		return a.listSessions(query)
	case "delete", "rm":
		if len(a.Args.Raw) < 2 {
			return ErrMissingArgument("conversation", "ghost sessions delete <id>")
		}
		return a.deleteSession(a.Args.Arg(1))
	}
	return &UsageError{
		Message:    fmt.Sprintf("unknown sessions subcommand %q", a.Args.Arg(0)),
		Suggestion: suggestFrom(sub, "list", "search", "delete"),
	}
}

func (a *App) listSessions(query string) error {
	store, err := a.Store()
	if err != nil {
		return err
	}
	metas, err := store.Search(query)
	if err != nil {
		return &CommandError{Command: "sessions", Action: "list", Err: err}
	}
	if len(metas) > a.Args.Limit {
		metas = metas[:a.Args.Limit]
	}

	if a.Args.JSON {
		return writeJSON(a.Out, metas)
	}
	if len(metas) == 0 {
		if query != "" {
			a.infof("No conversations match %q.", query)
		} else {
			a.infof("No saved conversations yet. Start one with 'ghost'.")
		}
		return nil
	}

	tw := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tUPDATED\tMSGS\tSOURCES\tSUMMARY")
	for i, m := range metas {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			i+1, shortID(m.ID), humanize.Time(m.UpdatedAt), m.MessageCount, m.SourceCount,
			util.Preview(m.Summary, summaryWidth))
	}
	return tw.Flush()
}

func (a *App) deleteSession(ref string) error {
	store, err := a.Store()
	if err != nil {
		return err
	}
	conv, err := store.Resolve(ref)
	if err != nil {
		return fmt.Errorf("conversation %q: %w", ref, err)
	}
	ok, err := a.confirm(fmt.Sprintf("delete %q", conv.Title()))
	if err != nil {
		return err
	}
	if !ok {
		a.infof("Cancelled.")
		return nil
	}
	if err := store.Delete(conv.ID); err != nil {
		return &CommandError{Command: "sessions", Action: "delete", Err: err}
	}
	a.Log.Info("conversation deleted", "id", conv.ID)
	a.infof("%s deleted %s", SuccessStyle.Render("OK"), shortID(conv.ID))
	return nil
}

// conversationInfos feeds /resume completion.
func (a *App) conversationInfos() []commands.ConversationInfo {
	store, err := a.Store()
	if err != nil {
		return nil
	}
	metas, err := store.List()
	if err != nil {
		a.Log.Warn("list conversations", "err", err)
		return nil
	}
	out := make([]commands.ConversationInfo, 0, len(metas))
	for _, m := range metas {
		out = append(out, commands.ConversationInfo{ID: m.ID, Summary: m.Summary})
	}
	return out
}

// shortID trims the common prefix and keeps enough of the UUID to be
// unambiguous in practice; Resolve accepts it back.
func shortID(id string) string {
	id = strings.TrimPrefix(id, "conv_")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// SHOW
// =============================================================================

func (a *App) resolveArg(usage string) (*storage.StoredConversation, error) {
	ref := a.Args.Arg(0)
	if ref == "" {
		return nil, ErrMissingArgument("conversation", usage)
	}
	if len(a.Args.Raw) > 1 {
		return nil, ErrTooManyArguments(usage)
	}
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	conv, err := store.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("conversation %q: %w", ref, err)
	}
	return conv, nil
}

func (a *App) runShow() error {
	conv, err := a.resolveArg("ghost show <id>")
	if err != nil {
		return err
	}

	format := export.FormatMarkdown
	if a.Args.JSON {
		format = export.FormatJSON
	}
	opts := export.DefaultOptions()
	opts.Logger = a.Log
	data, err := export.Render(conv, format, opts)
	if err != nil {
		return &CommandError{Command: "show", Err: err}
	}
	if a.Args.JSON {
		_, err = a.Out.Write(data)
		return err
	}
	_, err = io.WriteString(a.Out, renderMarkdown(string(data), wrapWidth(), a.styled()))
	return err
}

// =============================================================================
// EXPORT
// =============================================================================

func (a *App) runExport() error {
	conv, err := a.resolveArg("ghost export <id> [--format md|html|json] [-o path]")
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(a.Args.Format)
	if err != nil {
		return &UsageError{Message: err.Error()}
	}

	opts := export.DefaultOptions()
	opts.Logger = a.Log
	if out := a.Args.Output; out != "" {
		if isDir(out) || strings.HasSuffix(out, string(filepath.Separator)) {
			opts.OutputDir = out
		} else {
			opts.Path = out
		}
	}

	exporter, err := export.New(format, opts)
	if err != nil {
		return &CommandError{Command: "export", Err: err}
	}
	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil {
		return &CommandError{Command: "export", Action: "write", Err: err}
	}
	a.Log.Info("conversation exported", "id", conv.ID, "format", string(format), "path", path)
	if a.Args.Quiet {
		fmt.Fprintln(a.Out, path)
		return nil
	}
	fmt.Fprintf(a.Out, "%s exported %q to %s\n", SuccessStyle.Render("OK"), conv.Title(), path)
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// suggestFrom returns the option closest to input, for subcommand typos.
func suggestFrom(input string, options ...string) string {
	best, bestDistance := "", 3
	for _, o := range options {
		if d := levenshteinDistance(input, o); d < bestDistance {
			best, bestDistance = o, d
		}
	}
	return best
}
