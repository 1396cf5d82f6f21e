// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// LineSpinner - Simple line rotation, shown while waiting for the first fragment
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner - Three-dot animation, shown while text is arriving
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Spinner converts the config to a bubbles spinner definition.
func (s SpinnerConfig) Spinner() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Duration()}
}

// =============================================================================
// STREAMING CURSOR
// =============================================================================

// TypingCursor holds the blink frames of the streaming cursor.
var TypingCursor = []string{"▍", " "}

// CursorBlinkRate is the rate at which the cursor blinks.
var CursorBlinkRate = 530 * time.Millisecond

// CursorFrame returns the cursor glyph for the given blink tick.
func CursorFrame(tick int) string {
	if tick < 0 {
		tick = -tick
	}
	return TypingCursor[tick%len(TypingCursor)]
}
