// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 1024 * 1024

// StreamReader reads NDJSON lines from a streaming /api/chat response.
type StreamReader struct {
	scanner *bufio.Scanner
	done    bool
	model   string
}

// NewStreamReader creates a new stream reader.
func NewStreamReader(r io.Reader) *StreamReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &StreamReader{scanner: scanner}
}

// Next returns the next chunk, or io.EOF after the done line. A body that
// ends before the done line is reported as malformed.
func (s *StreamReader) Next() (llm.Chunk, error) {
	for !s.done {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return llm.Chunk{}, err
			}
			return llm.Chunk{}, &ClientError{
				Type:    ErrTypeInvalidResponse,
				Message: "stream ended before completion",
				Cause:   llm.ErrMalformedResponse,
			}
		}

		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp ChatResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			return llm.Chunk{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid stream line", Cause: llm.ErrMalformedResponse}
		}
		if resp.Error != "" {
			return llm.Chunk{}, &llm.APIError{Provider: ProviderName, Message: resp.Error, Err: llm.ErrServer}
		}
		if resp.Model != "" {
			s.model = resp.Model
		}
		if resp.Done {
			s.done = true
		}
		return llm.Chunk{Text: resp.Message.Content, FinishReason: resp.DoneReason}, nil
	}
	return llm.Chunk{}, io.EOF
}

// Model returns the model name reported by the stream.
func (s *StreamReader) Model() string {
	return s.model
}
