// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index is the citation library: every web source attached to a
// model reply is recorded in a SQLite database (~/.ghost/sources.db) with an
// FTS5 table over titles, URIs and hosts.
//
//	lib, err := index.Open(path)
//	defer lib.Close()
//	err = lib.Record(ctx, transcript.ID(), entry)
//	hits, err := lib.Search(ctx, "faded wheel", 20)
//
// The database uses the pure Go modernc.org/sqlite driver.
package index
