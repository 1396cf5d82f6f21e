// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream drives one exchange at a time between the transcript and a
// provider session.
//
// Submit appends the USER entry and an empty MODEL entry, then starts a pump
// goroutine that opens the provider stream and forwards every text fragment
// as an Event. The owner of the transcript applies events on its own
// goroutine with Apply: fragments extend the open entry in delivery order,
// End attaches deduplicated sources and freezes it, and Failure removes it
// again. Exactly one goroutine mutates the transcript.
//
// State machine:
//
//	Idle ──Submit──▶ Streaming ──End──▶ Finalizing ──▶ Idle
//	                     │                   │
//	                     └──Failure──▶ Failed ◀──┘ (history read failed)
//
// Failed behaves like Idle for new submissions; it only records that the
// last exchange was rolled back.
package stream
