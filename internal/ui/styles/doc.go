// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ghost TUI.

# Color System (colors.go)

All colors are Lip Gloss AdaptiveColor values, resolved against the
terminal background by the theme's renderer:

  - Orange - brand color: user turns, bullets, the streaming cursor
  - Amber - headings inside replies
  - Rose - the error banner
  - Emerald - success notices
  - TextPrimary / TextSecondary / TextMuted - body, labels, hints

StatusIndicators gives every notice an ASCII marker ([OK], [X], [!], [i]) so
meaning never depends on color alone.

# Theme (theme.go)

NewTheme builds every style from one lipgloss.Renderer bound to stdout.
The configured name picks the background: "dark", "light", or "auto" to ask
the terminal. NewThemeWithProfile fixes the color profile, which tests use
with termenv.Ascii to get plain text.

# Animations (animations.go)

SpinnerConfig definitions feed the bubbles spinner. TypingCursor and
CursorBlinkRate drive the cursor drawn after a streaming reply.
*/
package styles
