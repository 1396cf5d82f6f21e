// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat interface of ghost.

The chat package implements the terminal UI on top of Bubble Tea. A
stream.Accumulator owns the conversation; the Update loop is its single
writer, feeding it one event per message so a streaming reply grows in place
and is removed again when the exchange fails or is cancelled.

# Key Components

## Model (model.go)

The Model struct holds the accumulator, the input area, the transcript
viewport and the transient UI state:
  - Example prompts while the conversation is empty
  - An error banner for the last failed exchange
  - Notices for command results, expiring after a few seconds
  - A panel for /sources results

## View Rendering (view.go)

Replies are rendered from markdown.Render blocks: headings, bullet lists
and paragraphs with bold spans. Cited pages follow under "SOURCES:".

## Commands (commands.go)

Slash commands come from the commands package:
  - /help - Keys and commands, rendered with glamour
  - /new - Start over with a fresh session
  - /save, /resume - Conversation persistence
  - /sources - Search the citation library
  - /export - Write the conversation as md, html or json

# Usage

	m := chat.New(ctx, chat.Options{
		Config:   cfg,
		Provider: provider,
		Store:    store,
		Library:  library,
	})
	err := chat.Run(m, true)
*/
package chat
