// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts the restricted markdown dialect used by model
// replies into structured blocks.
//
// The dialect is line oriented:
//
//   - "# ", "## " and "### " start a heading (levels 1 to 3)
//   - "* " and "- " start an item of a single-level unordered list
//   - any other non-blank line is a paragraph of its own
//   - "**text**" inside any line is a bold span
//
// Leading and trailing whitespace is ignored when classifying a line.
// Blank lines produce nothing but end the current list. Render is total:
// any input yields a block sequence.
package markdown
