// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to Markdown, HTML and JSON.
//
// Every format carries the web sources attached to each reply. HTML output
// renders reply text with package markdown, so only headings, lists and bold
// spans are formatted and everything else is escaped text.
//
// # Usage
//
//	format, err := export.ParseFormat("md")
//	exporter, err := export.New(format, export.DefaultOptions())
//	path, err := export.ExportToFile(conv, exporter, opts)
//
// Render returns the bytes without writing a file.
package export
