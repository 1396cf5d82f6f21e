// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/config"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/index"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/stream"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/ui/styles"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamEventMsg carries one accumulator event into Update.
type StreamEventMsg struct {
	Event stream.Event
}

// StreamClosedMsg reports that the event channel closed without a final
// event, which only happens when the accumulator was closed.
type StreamClosedMsg struct{}

// CursorBlinkMsg toggles the streaming cursor.
type CursorBlinkMsg struct {
	tick int
}

// =============================================================================
// BACKGROUND WORK RESULTS
// =============================================================================

// SavedMsg reports the result of writing the conversation to disk.
type SavedMsg struct {
	ID     string
	Manual bool
	Err    error
}

// ExportedMsg reports the result of an /export.
type ExportedMsg struct {
	Path string
	Err  error
}

// SourcesMsg carries /sources search results.
type SourcesMsg struct {
	Query   string
	Sources []index.Source
	Err     error
}

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// NoticeMsg shows a transient notice above the input.
type NoticeMsg struct {
	Text string
}

// clearNoticeMsg expires a notice. gen discards stale timers.
type clearNoticeMsg struct {
	gen int
}

// noticeTTL is how long a notice stays visible.
const noticeTTL = 4 * time.Second

// =============================================================================
// COMMANDS
// =============================================================================

// waitForEvent reads the next accumulator event.
func waitForEvent(events <-chan stream.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}
		return StreamEventMsg{Event: ev}
	}
}

// drainEvents discards whatever the pump still sends after the exchange
// ended so it can exit.
func drainEvents(events <-chan stream.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		for range events {
		}
		return nil
	}
}

func blinkCursor(tick int) tea.Cmd {
	return tea.Tick(styles.CursorBlinkRate, func(time.Time) tea.Msg {
		return CursorBlinkMsg{tick: tick + 1}
	})
}

func waitForReload(reloads <-chan ConfigReloadedMsg) tea.Cmd {
	if reloads == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-reloads
		if !ok {
			return nil
		}
		return msg
	}
}

func expireNotice(gen int) tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{gen: gen}
	})
}
