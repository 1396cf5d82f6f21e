// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the ghost command line and runs its commands.
//
// With no command, ghost opens the full-screen chat TUI. The line-mode
// commands share one App, which holds the loaded configuration, the log
// and the lazily opened conversation store and source library.
//
// # Usage
//
//	os.Exit(cli.Execute(ctx, os.Args[1:]))
//
// # Commands
//
//   - tui: full-screen chat (default)
//   - chat: line-mode chat with slash commands and history
//   - ask: one question, answer on stdout
//   - sessions, show, export: saved conversations
//   - sources: the library of cited pages
//   - config: show, path, init, get, set
//   - version, help
//
// Status lines and errors go to stderr; stdout carries only answers and
// --json output. Exit codes are listed in errors.go.
package cli
