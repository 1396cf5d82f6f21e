// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/markdown"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/ui/styles"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/util"
)

const (
	appTitle    = "FREE FIRE Ghost Assistant"
	appSubtitle = "Powered by GHOST PLAYS"

	creditLine  = "Developed by Bilal (GHOST PLAYS)"
	socialLine  = "YouTube: @ghostplays143 | TikTok: @ghostplays13"
	promptTitle = "How can I help you, player?"
	promptHint  = "Select an example below or type your own question."
)

// =============================================================================
// LAYOUT
// =============================================================================

// render assembles the full screen.
func (m Model) render() string {
	sections := []string{m.renderHeader(), m.viewport.View()}
	sections = append(sections, m.chrome()...)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// chrome returns everything below the transcript.
func (m Model) chrome() []string {
	var out []string
	if msg := m.acc.Message(); msg != "" {
		out = append(out, m.theme.ErrorBanner.Width(m.width).Render(util.TruncateWidth(msg, max(m.width-2, 1))))
	}
	if m.panel != "" {
		out = append(out, m.panel)
	}
	if line := m.renderCompletions(); line != "" {
		out = append(out, line)
	}
	if m.notice != "" {
		out = append(out, m.theme.Notice.Render(util.TruncateWidth(m.notice, m.width)))
	}
	out = append(out, m.renderInput(), m.renderStatusBar(), m.renderFooter())
	return out
}

// chromeHeight is the number of rows not available to the viewport.
func (m Model) chromeHeight() int {
	h := lipgloss.Height(m.renderHeader())
	for _, s := range m.chrome() {
		h += lipgloss.Height(s)
	}
	return h
}

func (m Model) renderHeader() string {
	provider, modelName := m.providerInfo()
	title := m.theme.HeaderTitle.Render(appTitle)
	sub := m.theme.HeaderSubtitle.Render(fmt.Sprintf("%s · %s/%s", appSubtitle, provider, modelName))
	return m.theme.Header.Width(m.width).Render(title + "  " + sub)
}

func (m Model) renderFooter() string {
	return m.theme.Footer.Width(m.width).Render(creditLine + " | " + socialLine)
}

func (m Model) renderInput() string {
	style := m.theme.InputBorder
	if m.acc.Busy() {
		style = m.theme.InputBorderDisabled
	}
	return style.Width(max(m.width-2, 10)).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var left string
	switch {
	case m.acc.Busy():
		left = m.spinner.View() + " Ghost is typing... " + m.help.ShortHelpView(m.keys.streamingKeys())
	default:
		left = m.help.ShortHelpView(m.keys.ShortHelp())
	}
	right := fmt.Sprintf("%d messages", m.acc.Transcript().Len())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return m.theme.StatusBar.Width(m.width).Render(util.TruncateWidth(left, max(m.width-2, 1)))
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderCompletions() string {
	if !m.completion.Visible() {
		return ""
	}
	items := make([]string, 0, len(m.completion.Completions))
	for i, c := range m.completion.Completions {
		label := c.Display
		if i == m.completion.Selected {
			label = m.theme.StatusKey.Render(label)
		} else {
			label = m.theme.Muted.Render(label)
		}
		items = append(items, label)
	}
	return util.TruncateWidth(strings.Join(items, "  "), m.width)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders the example prompts for an empty conversation,
// otherwise every entry in order.
func (m Model) renderTranscript() string {
	if m.promptsVisible() {
		return m.renderPrompts()
	}

	t := m.acc.Transcript()
	openID := t.OpenID()
	entries := t.Entries()
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, m.renderEntry(e, e.ID == openID))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) contentWidth() int {
	return max(m.viewport.Width-4, 20)
}

func (m Model) renderEntry(e model.Entry, streaming bool) string {
	var sb strings.Builder
	width := m.contentWidth()

	if e.IsUser() {
		sb.WriteString(m.theme.UserLabel.Render(e.Role.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.theme.UserText.Render(wordwrap.String(e.Text, width)))
		return indent(sb.String())
	}

	sb.WriteString(m.theme.ModelLabel.Render(e.Role.DisplayName()))
	sb.WriteString("\n")
	body := renderBlocks(m.theme, markdown.Render(e.Text), width)
	if streaming {
		body += m.theme.Cursor.Render(styles.CursorFrame(m.cursorTick))
	}
	sb.WriteString(body)

	if e.HasSources() {
		sb.WriteString("\n\n")
		sb.WriteString(renderSources(m.theme, e.Sources, width))
	}
	return indent(sb.String())
}

// renderBlocks styles markdown blocks for the terminal.
func renderBlocks(theme *styles.Theme, blocks []markdown.Block, width int) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b := b.(type) {
		case *markdown.Heading:
			lines = append(lines, theme.Heading(b.Level).Render(wordwrap.String(b.Inline.Plain(), width)))
		case *markdown.List:
			for _, item := range b.Items {
				text := wordwrap.String(renderInline(theme, item), width-2)
				lines = append(lines, theme.Bullet.Render("•")+" "+strings.ReplaceAll(text, "\n", "\n  "))
			}
		case *markdown.Paragraph:
			lines = append(lines, wordwrap.String(renderInline(theme, b.Inline), width))
		}
	}
	return strings.Join(lines, "\n")
}

func renderInline(theme *styles.Theme, in markdown.Inline) string {
	var sb strings.Builder
	for _, span := range in {
		if span.Bold {
			sb.WriteString(theme.Bold.Render(span.Text))
		} else {
			sb.WriteString(theme.ModelText.Render(span.Text))
		}
	}
	return sb.String()
}

// renderSources lists cited pages, one per line, each cut to width.
func renderSources(theme *styles.Theme, sources []model.WebSource, width int) string {
	var sb strings.Builder
	sb.WriteString(theme.SourcesLabel.Render("SOURCES:"))
	for _, src := range sources {
		sb.WriteString("\n")
		if src.Title != "" {
			sb.WriteString(theme.SourceTitle.Render(util.TruncateWidth(src.Title, width)))
			sb.WriteString("\n")
		}
		sb.WriteString(theme.SourceURI.Render(util.TruncateWidth(src.URI, width)))
	}
	return sb.String()
}

func (m Model) renderPrompts() string {
	width := m.contentWidth()
	var sb strings.Builder
	sb.WriteString(m.theme.PromptTitle.Render(promptTitle))
	sb.WriteString("\n")
	sb.WriteString(m.theme.Muted.Render(promptHint))
	for i, p := range m.prompts {
		style := m.theme.PromptItem
		if i == m.selected {
			style = m.theme.PromptItemSelected
		}
		label := m.theme.PromptNumber.Render(fmt.Sprintf("%d", i+1)) + " " + util.TruncateWidth(p, width-6)
		sb.WriteString("\n")
		sb.WriteString(style.Render(label))
	}
	return indent(sb.String())
}

// indent shifts a block right by two cells.
func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
