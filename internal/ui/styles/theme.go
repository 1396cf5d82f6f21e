// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Name is "dark", "light" or "auto" as configured.
	Name string

	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	renderer *lipgloss.Renderer

	// ==========================================================================
	// HEADER / FOOTER
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	Footer         lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserLabel  lipgloss.Style
	ModelLabel lipgloss.Style
	UserText   lipgloss.Style
	ModelText  lipgloss.Style
	Cursor     lipgloss.Style

	// Headings holds the styles for heading levels 1-3.
	Headings [3]lipgloss.Style
	Bold     lipgloss.Style
	Bullet   lipgloss.Style

	SourcesLabel lipgloss.Style
	SourceTitle  lipgloss.Style
	SourceURI    lipgloss.Style

	// ==========================================================================
	// BANNERS
	// ==========================================================================

	ErrorBanner lipgloss.Style
	Notice      lipgloss.Style

	// ==========================================================================
	// EXAMPLE PROMPTS
	// ==========================================================================

	PromptTitle        lipgloss.Style
	PromptItem         lipgloss.Style
	PromptItemSelected lipgloss.Style
	PromptNumber       lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS BAR
	// ==========================================================================

	InputBorder         lipgloss.Style
	InputBorderDisabled lipgloss.Style
	StatusBar           lipgloss.Style
	StatusKey           lipgloss.Style
	StatusDesc          lipgloss.Style
	Spinner             lipgloss.Style
	Muted               lipgloss.Style
}

// NewTheme creates a theme for stdout. name is "dark", "light" or "auto";
// "auto" asks the terminal for its background.
func NewTheme(name string) *Theme {
	profile := termenv.NewOutput(os.Stdout).EnvColorProfile()
	isDark := true
	switch strings.ToLower(name) {
	case "light":
		isDark = false
	case "auto":
		isDark = termenv.HasDarkBackground()
	}
	return NewThemeWithProfile(name, isDark, profile)
}

// NewThemeWithProfile creates a theme with fixed terminal capabilities.
// termenv.Ascii yields unstyled output.
func NewThemeWithProfile(name string, isDark bool, profile termenv.Profile) *Theme {
	r := lipgloss.NewRenderer(os.Stdout)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(isDark)

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		ColorProfile: profile,
		renderer:     r,
	}
	t.initStyles()
	return t
}

// Renderer returns the renderer the styles are bound to.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

func (t *Theme) style() lipgloss.Style {
	return t.renderer.NewStyle()
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = t.style().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(OrangeDeep).
		Padding(0, 1).
		Align(lipgloss.Center)

	t.HeaderTitle = t.style().
		Bold(true).
		Foreground(Orange)

	t.HeaderSubtitle = t.style().
		Foreground(TextSecondary).
		Italic(true)

	t.Footer = t.style().
		Foreground(TextMuted).
		Align(lipgloss.Center)

	// Transcript
	t.UserLabel = t.style().Bold(true).Foreground(Orange)
	t.ModelLabel = t.style().Bold(true).Foreground(TextSecondary)
	t.UserText = t.style().Foreground(TextPrimary)
	t.ModelText = t.style().Foreground(TextPrimary)
	t.Cursor = t.style().Foreground(Orange)

	t.Headings = [3]lipgloss.Style{
		t.style().Bold(true).Underline(true).Foreground(Amber),
		t.style().Bold(true).Foreground(Amber),
		t.style().Bold(true).Foreground(TextPrimary),
	}
	t.Bold = t.style().Bold(true)
	t.Bullet = t.style().Foreground(Orange)

	t.SourcesLabel = t.style().
		Bold(true).
		Foreground(TextMuted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)
	t.SourceTitle = t.style().Foreground(Orange)
	t.SourceURI = t.style().Foreground(TextMuted)

	// Banners
	t.ErrorBanner = t.style().
		Foreground(Rose).
		Background(RoseDeep).
		Padding(0, 1).
		Align(lipgloss.Center)
	t.Notice = t.style().Foreground(Emerald)

	// Example prompts
	t.PromptTitle = t.style().Bold(true).Foreground(Orange)
	t.PromptItem = t.style().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PromptItemSelected = t.PromptItem.
		BorderForeground(Orange).
		Background(SurfaceBright)
	t.PromptNumber = t.style().Bold(true).Foreground(Orange)

	// Input and status
	t.InputBorder = t.style().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Orange)
	t.InputBorderDisabled = t.InputBorder.
		BorderForeground(Overlay)
	t.StatusBar = t.style().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusKey = t.style().Bold(true).Foreground(Orange)
	t.StatusDesc = t.style().Foreground(TextMuted)
	t.Spinner = t.style().Foreground(Orange)
	t.Muted = t.style().Foreground(TextMuted)
}

// Heading returns the style for a heading level, clamped to 1-3.
func (t *Theme) Heading(level int) lipgloss.Style {
	if level < 1 {
		level = 1
	}
	if level > len(t.Headings) {
		level = len(t.Headings)
	}
	return t.Headings[level-1]
}

// GlamourStyle is the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}
