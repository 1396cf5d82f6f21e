// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

// =============================================================================
// STREAMING TYPES
// =============================================================================

// StreamChunk represents a single chunk from the OpenRouter streaming response.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content     string       `json:"content"`
			Role        string       `json:"role,omitempty"`
			Annotations []Annotation `json:"annotations,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error,omitempty"`
}

// Annotation is attached to a delta when the web plugin cites a page.
type Annotation struct {
	Type        string       `json:"type"`
	URLCitation *URLCitation `json:"url_citation,omitempty"`
}

// URLCitation is a web search result citation.
type URLCitation struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// GetContent returns the content from the first choice's delta.
func (c *StreamChunk) GetContent() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// GetFinishReason returns the finish reason if streaming is complete.
func (c *StreamChunk) GetFinishReason() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].FinishReason
	}
	return ""
}

// Grounding converts url_citation annotations to grounding metadata.
func (c *StreamChunk) Grounding() *llm.GroundingMetadata {
	if len(c.Choices) == 0 {
		return nil
	}
	var g *llm.GroundingMetadata
	for _, a := range c.Choices[0].Delta.Annotations {
		if a.Type != "url_citation" || a.URLCitation == nil {
			continue
		}
		if g == nil {
			g = &llm.GroundingMetadata{}
		}
		g.Chunks = append(g.Chunks, llm.GroundingChunk{
			Web: &llm.WebRef{URI: a.URLCitation.URL, Title: a.URLCitation.Title},
		})
	}
	return g
}

// =============================================================================
// SESSION
// =============================================================================

type session struct {
	client      *OpenRouterClient
	instruction string
	webSearch   bool
	history     *llm.History
}

// SendStream implements llm.Session.
func (s *session) SendStream(ctx context.Context, message string) (*llm.ChunkStream, error) {
	user := llm.UserContent(message)

	req := ChatRequest{Model: s.client.model, Stream: true}
	if s.instruction != "" {
		req.Messages = append(req.Messages, ChatMessage{Role: "system", Content: s.instruction})
	}
	for _, c := range s.history.Contents() {
		req.Messages = append(req.Messages, toChatMessage(c))
	}
	req.Messages = append(req.Messages, toChatMessage(user))
	if s.webSearch {
		req.Plugins = []Plugin{{ID: "web"}}
	}

	resp, err := s.client.openStream(ctx, req)
	if err != nil {
		return nil, err
	}

	reader := llm.NewSSEReader(resp.Body)
	finished := false
	next := func() (llm.Chunk, error) {
		if finished {
			return llm.Chunk{}, io.EOF
		}
		_, data, err := reader.ReadEvent()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return llm.Chunk{}, io.EOF
			}
			if ctx.Err() != nil {
				return llm.Chunk{}, ctx.Err()
			}
			return llm.Chunk{}, err
		}

		// Check for [DONE] signal
		if bytes.Equal(data, []byte("[DONE]")) {
			finished = true
			return llm.Chunk{}, io.EOF
		}

		var chunk StreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return llm.Chunk{}, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
		}
		if chunk.Error != nil {
			return llm.Chunk{}, &llm.APIError{Provider: ProviderName, Message: chunk.Error.Message, Err: llm.ErrServer}
		}
		return llm.Chunk{
			Text:         chunk.GetContent(),
			FinishReason: chunk.GetFinishReason(),
			Grounding:    chunk.Grounding(),
		}, nil
	}

	stream := llm.NewChunkStream(next, resp.Body)
	stream.OnComplete(func(reply llm.Content) {
		s.history.Record(user, reply)
	})
	return stream, nil
}

// History implements llm.Session.
func (s *session) History() ([]llm.Content, error) {
	return s.history.Contents(), nil
}
