// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message in the conversation.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatRequest is the request body for /api/chat endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// toMessage converts provider-neutral content to Ollama's roles.
func toMessage(c llm.Content) Message {
	role := c.Role
	if role == llm.RoleModel {
		role = "assistant"
	}
	return Message{Role: role, Content: c.Text()}
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is one NDJSON line of a streaming /api/chat response.
type ChatResponse struct {
	Model      string  `json:"model"`
	Message    Message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason,omitempty"`
	Error      string  `json:"error,omitempty"`

	// Present on the final line only.
	PromptEvalCount int   `json:"prompt_eval_count,omitempty"`
	EvalCount       int   `json:"eval_count,omitempty"`
	TotalDuration   int64 `json:"total_duration,omitempty"`
}

// OllamaError represents an error response from Ollama.
type OllamaError struct {
	Error string `json:"error"`
}
