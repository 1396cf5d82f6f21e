// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// A Transcript is an ordered, append-only log of entries. At most one entry,
// always the tail, is "open": it is the MODEL response currently being
// streamed, and it can only be changed through the *Pending handle returned
// when it was opened. Every other entry is frozen.
//
// # Key Types
//
//   - Role: who produced an entry (user or model)
//   - Entry: one turn of the conversation with optional web sources
//   - WebSource: a cited web page, identified by its URI
//   - Transcript: the ordered log, safe for concurrent readers
//   - Pending: write handle for the open MODEL entry
//
// # Usage
//
//	t := model.NewTranscript()
//	_, p, err := t.Begin("What is the next top-up event?")
//	if err != nil {
//	    return err
//	}
//	p.Append("The next ")
//	p.Append("event starts Friday.")
//	p.SetSources(sources)
//	p.Commit()
package model
