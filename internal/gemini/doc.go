// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini implements llm.Provider for the Google Gemini API.
//
// Replies are streamed from the streamGenerateContent endpoint as
// Server-Sent Events. With web search enabled the request carries the
// google_search tool, and the grounding metadata returned with the reply is
// recorded on the first part of the model turn in the session history.
package gemini
