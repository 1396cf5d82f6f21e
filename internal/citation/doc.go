// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citation turns provider grounding metadata into the list of web
// sources shown under a model reply.
//
// Dedupe is total: it never fails, drops incomplete references, keeps the
// first occurrence of every URI and preserves the order in which URIs were
// first seen.
package citation
