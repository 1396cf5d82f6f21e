// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system shared by the TUI and
// the line REPL.
//
// The package only describes and parses commands; each front end executes
// them its own way by switching on Command.Name.
//
// # Built-in Commands
//
//   - /help: Show available commands
//   - /new: Start a new conversation
//   - /save: Save the conversation now
//   - /resume: Continue a saved conversation
//   - /sources: Search the citation library
//   - /export: Export the conversation (md, html, json)
//   - /quit: Exit
//
// # Usage
//
//	registry := commands.NewRegistry()
//	result := commands.NewParser(registry).Parse(input)
//	if result.IsCommand && result.Error == nil {
//	    switch result.Command.Name {
//	    case commands.Export:
//	        ...
//	    }
//	}
//
// Completer offers tab completion for command names and their arguments.
package commands
