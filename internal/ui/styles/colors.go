// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// BRAND COLORS
// =============================================================================

// Orange - Brand color, user turns, streaming cursor
var Orange = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"}

// OrangeDeep - Borders and separators in brand color
var OrangeDeep = lipgloss.AdaptiveColor{Light: "#9A3412", Dark: "#EA580C"}

// Amber - Headings inside replies
var Amber = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// Cyan - Links and source URIs
var Cyan = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Error banner
var Rose = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#FB7185"}

// RoseDeep - Error banner background
var RoseDeep = lipgloss.AdaptiveColor{Light: "#FFE4E6", Dark: "#4C0519"}

// Emerald - Success notices (saved, exported)
var Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// SurfaceDim - Header and status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"}

// SurfaceBright - Selected example prompt
var SurfaceBright = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}

// TextSecondary - Labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}

// TextMuted - Hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet contains ASCII indicators that carry meaning without color.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
}

// StatusIndicators is the indicator set used by notices and banners.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
}
