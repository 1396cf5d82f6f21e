// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations as one JSON file each, by default
// under ~/.ghost/conversations/.
//
// Only frozen transcript entries are saved, together with the web sources
// attached to model replies. A saved conversation can be listed, searched,
// exported, or turned back into a model.Transcript to resume it:
//
//	store, err := storage.NewConversationStore(dir, 100)
//	id, err := store.SaveTranscript(transcript, "gemini", "gemini-2.5-flash")
//	conv, err := store.Resolve("1") // most recent
//	resumed := conv.Transcript()
package storage
