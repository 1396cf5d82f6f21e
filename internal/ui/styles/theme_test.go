// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"
	"time"

	"github.com/muesli/termenv"
)

func TestNewThemeWithProfile_Ascii(t *testing.T) {
	theme := NewThemeWithProfile("dark", true, termenv.Ascii)

	if got := theme.Bold.Render("hi"); got != "hi" {
		t.Errorf("Bold.Render() = %q, want plain text under Ascii", got)
	}
	if got := theme.GlamourStyle(); got != "notty" {
		t.Errorf("GlamourStyle() = %q, want notty", got)
	}
	if theme.Renderer() == nil {
		t.Fatal("Renderer() is nil")
	}
}

func TestGlamourStyle(t *testing.T) {
	dark := NewThemeWithProfile("dark", true, termenv.TrueColor)
	light := NewThemeWithProfile("light", false, termenv.TrueColor)

	if got := dark.GlamourStyle(); got != "dark" {
		t.Errorf("dark GlamourStyle() = %q", got)
	}
	if got := light.GlamourStyle(); got != "light" {
		t.Errorf("light GlamourStyle() = %q", got)
	}
}

func TestHeading_Clamps(t *testing.T) {
	theme := NewThemeWithProfile("dark", true, termenv.Ascii)
	for _, level := range []int{-1, 0, 1, 2, 3, 4, 9} {
		if got := theme.Heading(level).Render("x"); got != "x" {
			t.Errorf("Heading(%d).Render() = %q", level, got)
		}
	}
}

func TestSpinnerConfig(t *testing.T) {
	if got := LineSpinner.Duration(); got != 100*time.Millisecond {
		t.Errorf("LineSpinner.Duration() = %v", got)
	}
	if got := (SpinnerConfig{}).Duration(); got != time.Second {
		t.Errorf("zero FPS Duration() = %v", got)
	}

	s := DotsSpinner.Spinner()
	if len(s.Frames) != len(DotsSpinner.Frames) {
		t.Errorf("Spinner() frames = %d", len(s.Frames))
	}
}

func TestCursorFrame(t *testing.T) {
	if CursorFrame(0) != TypingCursor[0] || CursorFrame(1) != TypingCursor[1] || CursorFrame(2) != TypingCursor[0] {
		t.Error("CursorFrame does not alternate")
	}
	if CursorFrame(-3) != TypingCursor[1] {
		t.Errorf("CursorFrame(-3) = %q", CursorFrame(-3))
	}
}
