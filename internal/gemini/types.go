// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// GenerateRequest is the body of a streamGenerateContent call.
type GenerateRequest struct {
	Contents          []Content `json:"contents"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
	Tools             []Tool    `json:"tools,omitempty"`
}

// Content is a turn in Gemini wire format.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a text part.
type Part struct {
	Text string `json:"text"`
}

// Tool enables a server-side tool.
type Tool struct {
	GoogleSearch *GoogleSearch `json:"google_search,omitempty"`
}

// GoogleSearch enables search grounding. It has no options.
type GoogleSearch struct{}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateResponse is one streamed event.
type GenerateResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	Error          *APIErrorBody   `json:"error,omitempty"`
}

// Candidate is one generated reply.
type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

// GroundingMetadata lists the web pages used to ground a reply.
type GroundingMetadata struct {
	GroundingChunks  []GroundingChunk `json:"groundingChunks,omitempty"`
	WebSearchQueries []string         `json:"webSearchQueries,omitempty"`
}

// GroundingChunk is one reference; Web is nil for non-web references.
type GroundingChunk struct {
	Web *WebChunk `json:"web,omitempty"`
}

// WebChunk is a web page reference.
type WebChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// UsageMetadata reports token counts.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// PromptFeedback is set when the prompt was blocked.
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// APIErrorBody is the error object of an error response.
type APIErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type apiErrorResponse struct {
	Error APIErrorBody `json:"error"`
}

// =============================================================================
// CONVERSION
// =============================================================================

func toWire(c llm.Content) Content {
	parts := make([]Part, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = Part{Text: p.Text}
	}
	return Content{Role: c.Role, Parts: parts}
}

// toGrounding converts wire metadata, returning nil when there is nothing
// to keep.
func (g *GroundingMetadata) toGrounding() *llm.GroundingMetadata {
	if g == nil || (len(g.GroundingChunks) == 0 && len(g.WebSearchQueries) == 0) {
		return nil
	}
	out := &llm.GroundingMetadata{Queries: g.WebSearchQueries}
	for _, c := range g.GroundingChunks {
		var web *llm.WebRef
		if c.Web != nil {
			web = &llm.WebRef{URI: c.Web.URI, Title: c.Web.Title}
		}
		out.Chunks = append(out.Chunks, llm.GroundingChunk{Web: web})
	}
	return out
}

// toChunk extracts the text, finish reason and grounding of the first
// candidate.
func (r *GenerateResponse) toChunk() llm.Chunk {
	if len(r.Candidates) == 0 {
		return llm.Chunk{}
	}
	cand := r.Candidates[0]
	var text string
	for _, p := range cand.Content.Parts {
		text += p.Text
	}
	return llm.Chunk{
		Text:         text,
		FinishReason: cand.FinishReason,
		Grounding:    cand.GroundingMetadata.toGrounding(),
	}
}
