// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// helpMarkdown builds the help document: key bindings, then commands.
func (m Model) helpMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Ghost Assistant help\n\n")
	sb.WriteString("## Keys\n\n| Key | Action |\n|---|---|\n")
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			sb.WriteString("| `" + h.Key + "` | " + h.Desc + " |\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(m.registry.HelpText())
	sb.WriteString("Press any key to close.\n")
	return sb.String()
}

// renderHelp renders the help document with glamour, falling back to the
// raw markdown when rendering fails.
func (m Model) renderHelp() string {
	doc := m.helpMarkdown()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(max(m.viewport.Width-4, 20)),
	)
	if err != nil {
		m.log.Warn("help renderer", "err", err)
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		m.log.Warn("render help", "err", err)
		return doc
	}
	return out
}
