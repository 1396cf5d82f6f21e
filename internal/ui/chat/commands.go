// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/commands"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/export"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/util"
)

// sourcesLimit caps /sources results shown in the panel.
const sourcesLimit = 10

// =============================================================================
// SLASH COMMAND DISPATCH
// =============================================================================

// runCommand parses and executes a slash command.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	result := m.parser.Parse(input)
	if result.Error != nil {
		return m.flash(result.Error.Error())
	}
	m.log.Debug("slash command", "command", result.Command.Name, "args", len(result.Args))

	switch result.Command.Name {
	case commands.Help:
		return m.toggleHelp()
	case commands.Quit:
		return m.quit()
	case commands.New:
		return m.newConversation()
	case commands.Save:
		return m.saveNow()
	case commands.Resume:
		return m.resume(result.Arg(0))
	case commands.Sources:
		return m.searchSources(result.Arg(0))
	case commands.Export:
		return m.exportConversation(result.Arg(0))
	}
	return m.flash("command not available here: " + result.Command.Name)
}

func (m Model) toggleHelp() (tea.Model, tea.Cmd) {
	m.showHelp = !m.showHelp
	m.refresh()
	if m.showHelp {
		m.viewport.GotoTop()
	} else {
		m.viewport.GotoBottom()
	}
	return m, nil
}

func (m Model) newConversation() (tea.Model, tea.Cmd) {
	if m.acc.Busy() {
		return m.flash("Wait for the reply to finish")
	}
	if err := m.acc.Transcript().Reset(); err != nil {
		return m.flash(err.Error())
	}
	if err := m.acc.Restart(m.provider, m.cfg.Session(nil)); err != nil {
		m.log.Error("restart session", "err", err)
	}
	m.panel = ""
	m.selected = -1
	m.refresh()
	m.viewport.GotoTop()
	return m.flash("New conversation")
}

func (m Model) saveNow() (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m.flash("Conversation storage is not available")
	}
	t := m.acc.Transcript()
	if t.IsEmpty() {
		return m.flash("Nothing to save yet")
	}
	ctx, store, library, log := m.ctx, m.store, m.library, m.log
	provider, modelName := m.providerInfo()
	return m, func() tea.Msg {
		id, err := store.SaveTranscript(t, provider, modelName)
		if err == nil {
			log.Info("conversation saved", "id", id)
			if library != nil {
				if lerr := library.RecordTranscript(ctx, t); lerr != nil {
					log.Warn("record sources", "id", id, "err", lerr)
				}
			}
		}
		return SavedMsg{ID: id, Manual: true, Err: err}
	}
}

func (m Model) resume(ref string) (tea.Model, tea.Cmd) {
	if m.acc.Busy() {
		return m.flash("Wait for the reply to finish")
	}
	if m.store == nil {
		return m.flash("Conversation storage is not available")
	}
	conv, err := m.store.Resolve(ref)
	if err != nil {
		return m.flash(fmt.Sprintf("Cannot resume %q: %v", ref, err))
	}

	m.acc.Close()
	m.acc = m.newAccumulator(conv.Transcript())
	m.panel = ""
	m.selected = -1
	m.log.Info("conversation resumed", "id", conv.ID, "messages", len(conv.Messages))

	m.refresh()
	m.viewport.GotoBottom()
	return m.flash("Resumed: " + conv.Title())
}

func (m Model) searchSources(query string) (tea.Model, tea.Cmd) {
	if m.library == nil {
		return m.flash("Source library is not available")
	}
	ctx, lib := m.ctx, m.library
	return m, func() tea.Msg {
		sources, err := lib.Search(ctx, query, sourcesLimit)
		return SourcesMsg{Query: query, Sources: sources, Err: err}
	}
}

func (m Model) handleSources(msg SourcesMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Error("search sources", "err", msg.Err)
		return m.flash("Source search failed: " + msg.Err.Error())
	}
	if len(msg.Sources) == 0 {
		if msg.Query == "" {
			return m.flash("No sources cited yet")
		}
		return m.flash(fmt.Sprintf("No sources match %q", msg.Query))
	}

	width := max(m.width-6, 20)
	var sb strings.Builder
	title := "Recent sources"
	if msg.Query != "" {
		title = fmt.Sprintf("Sources matching %q", msg.Query)
	}
	sb.WriteString(m.theme.SourcesLabel.Render(title))
	for i, src := range msg.Sources {
		label := src.Title
		if label == "" {
			label = src.Host
		}
		meta := fmt.Sprintf("%s · cited %s · %s", src.Host,
			english.Plural(src.Count, "time", "times"), humanize.Time(src.LastSeen))
		fmt.Fprintf(&sb, "\n%2d. %s\n    %s\n    %s", i+1,
			m.theme.SourceTitle.Render(util.TruncateWidth(label, width)),
			m.theme.SourceURI.Render(util.TruncateWidth(src.URI, width)),
			m.theme.Muted.Render(util.TruncateWidth(meta, width)))
	}
	sb.WriteString("\n" + m.theme.Muted.Render("Esc to close"))
	m.panel = sb.String()
	m.refresh()
	return m, nil
}

func (m Model) exportConversation(format string) (tea.Model, tea.Cmd) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return m.flash(err.Error())
	}
	t := m.acc.Transcript()
	if t.IsEmpty() {
		return m.flash("Nothing to export yet")
	}

	opts := export.DefaultOptions()
	opts.Theme = m.theme.Name
	opts.Logger = m.log
	provider, modelName := m.providerInfo()
	return m, func() tea.Msg {
		path, err := export.ExportTranscript(t, provider, modelName, f, opts)
		return ExportedMsg{Path: path, Err: err}
	}
}
