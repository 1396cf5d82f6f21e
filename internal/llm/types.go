// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"strings"
	"sync"
)

// =============================================================================
// PROVIDER / SESSION
// =============================================================================

// Provider creates chat sessions against one backend.
type Provider interface {
	// Name returns the provider identifier ("gemini", "openrouter", "ollama").
	Name() string

	// Model returns the model the provider talks to.
	Model() string

	// NewSession opens a chat session. It fails with an *InitError when the
	// provider cannot be used, for example when credentials are missing.
	NewSession(cfg SessionConfig) (Session, error)
}

// Session is one conversation with a provider.
type Session interface {
	// SendStream sends a user message and returns the reply as a stream.
	SendStream(ctx context.Context, message string) (*ChunkStream, error)

	// History returns the provider-side record of the conversation. The
	// exchange for a stream is only present after the stream is exhausted.
	History() ([]Content, error)
}

// SessionConfig configures a new session.
type SessionConfig struct {
	SystemInstruction string
	Tools             Tools

	// History seeds the session, e.g. when a saved conversation is resumed.
	History []Content
}

// Tools enables provider-side tools.
type Tools struct {
	// WebSearch enables search grounding (google_search on Gemini, the web
	// plugin on OpenRouter).
	WebSearch bool
}

// =============================================================================
// CONTENT
// =============================================================================

// Provider-side roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Content is one turn of the provider-side history.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a piece of a turn. Grounding is only set on model turns that used
// web search, and only on the first part.
type Part struct {
	Text      string             `json:"text"`
	Grounding *GroundingMetadata `json:"grounding,omitempty"`
}

// Text concatenates the text of all parts.
func (c Content) Text() string {
	var sb strings.Builder
	for _, p := range c.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// UserContent builds a single-part user turn.
func UserContent(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{{Text: text}}}
}

// ModelContent builds a single-part model turn.
func ModelContent(text string, grounding *GroundingMetadata) Content {
	return Content{Role: RoleModel, Parts: []Part{{Text: text, Grounding: grounding}}}
}

// GroundingMetadata describes the web pages a reply was grounded on.
type GroundingMetadata struct {
	Chunks  []GroundingChunk `json:"chunks,omitempty"`
	Queries []string         `json:"queries,omitempty"`
}

// GroundingChunk is one reference. Web is nil for non-web references.
type GroundingChunk struct {
	Web *WebRef `json:"web,omitempty"`
}

// WebRef is a web page reference as reported by the provider. Either field
// may be empty.
type WebRef struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// merge appends other's chunks and queries to g.
func (g *GroundingMetadata) merge(other *GroundingMetadata) {
	if other == nil {
		return
	}
	g.Chunks = append(g.Chunks, other.Chunks...)
	g.Queries = append(g.Queries, other.Queries...)
}

// =============================================================================
// HISTORY
// =============================================================================

// History is a concurrency-safe provider-side history shared by the session
// implementations.
type History struct {
	mu       sync.RWMutex
	contents []Content
}

// NewHistory creates a history seeded with initial.
func NewHistory(initial []Content) *History {
	h := &History{}
	h.contents = append(h.contents, initial...)
	return h
}

// Contents returns a copy of the recorded turns.
func (h *History) Contents() []Content {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Content, len(h.contents))
	copy(out, h.contents)
	return out
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.contents)
}

// Record appends a completed exchange.
func (h *History) Record(user, reply Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.contents = append(h.contents, user, reply)
}
