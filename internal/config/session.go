// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"

// WebSearch reports whether the selected provider should ground replies in
// web search results. Ollama has no search tool.
func (c *Config) WebSearch() bool {
	switch c.Provider {
	case ProviderGemini:
		return c.Gemini.SearchGrounding
	case ProviderOpenRouter:
		return c.OpenRouter.WebSearch
	default:
		return false
	}
}

// Session builds the session configuration for the assistant persona,
// seeded with history when a saved conversation is resumed.
func (c *Config) Session(history []llm.Content) llm.SessionConfig {
	return llm.SessionConfig{
		SystemInstruction: c.Assistant.SystemInstruction,
		Tools:             llm.Tools{WebSearch: c.WebSearch()},
		History:           history,
	}
}
