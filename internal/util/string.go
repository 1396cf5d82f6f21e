// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// Ellipsis is appended by TruncateWidth when it cuts a string.
const Ellipsis = "..."

// StringWidth returns the number of terminal cells s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth cuts s to at most maxWidth cells, ending with Ellipsis when
// anything was removed. Wide runes are never split.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(Ellipsis) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// SingleLine collapses all whitespace runs, newlines included, to one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Preview returns s as a single line no wider than maxWidth, for listings.
func Preview(s string, maxWidth int) string {
	return TruncateWidth(SingleLine(s), maxWidth)
}

// Fold prepares text for case-insensitive matching. NFKC maps stylised
// compatibility characters (full-width, mathematical letters) common in
// player nicknames to their plain forms.
func Fold(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
