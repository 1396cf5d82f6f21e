// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run runs the chat model as a Bubble Tea program and releases it when the
// program exits.
func Run(m Model, altScreen bool) error {
	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if altScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	return err
}
