// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the OpenRouter provider.
//
// OpenRouter exposes many hosted models through one OpenAI-compatible API.
// Replies are streamed as Server-Sent Events. When web search is enabled the
// request carries the "web" plugin, and the url_citation annotations that
// come back are recorded as grounding on the model turn, the same way the
// Gemini provider records google_search grounding.
//
// # Key Types
//
//   - OpenRouterClient: llm.Provider for OpenRouter
//   - ChatMessage: message in OpenAI chat format
//   - StreamChunk: one decoded SSE event
//
// # Usage
//
//	client := cloud.NewOpenRouterClient(apiKey).WithModel("openai/gpt-4o-mini")
//	sess, err := client.NewSession(llm.SessionConfig{Tools: llm.Tools{WebSearch: true}})
package cloud
