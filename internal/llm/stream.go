// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"errors"
	"io"
	"strings"
	"sync"
)

// =============================================================================
// CHUNK STREAM
// =============================================================================

// Chunk is one increment of a streamed reply.
type Chunk struct {
	Text         string
	Grounding    *GroundingMetadata
	FinishReason string
}

// ChunkStream yields the chunks of one reply. It is finite, cannot be
// restarted and is not safe for concurrent use. The caller must Close it,
// even when iteration stopped early.
type ChunkStream struct {
	next   func() (Chunk, error)
	closer io.Closer

	text      strings.Builder
	grounding *GroundingMetadata
	finish    string
	done      bool
	err       error

	onComplete func(reply Content)

	closeOnce sync.Once
	closeErr  error
}

// NewChunkStream creates a stream from a provider-specific next function.
// next must return io.EOF once the reply is complete. closer, usually the
// HTTP response body, may be nil.
func NewChunkStream(next func() (Chunk, error), closer io.Closer) *ChunkStream {
	return &ChunkStream{next: next, closer: closer}
}

// OnComplete registers fn to be called once, with the assembled model turn,
// when the stream reaches io.EOF. It is not called on failure.
func (s *ChunkStream) OnComplete(fn func(reply Content)) {
	s.onComplete = fn
}

// Next returns the next chunk, or io.EOF when the reply is complete. After a
// non-EOF error every later call returns the same error.
func (s *ChunkStream) Next() (Chunk, error) {
	if s.done {
		return Chunk{}, io.EOF
	}
	if s.err != nil {
		return Chunk{}, s.err
	}

	chunk, err := s.next()
	if errors.Is(err, io.EOF) {
		s.done = true
		if s.onComplete != nil {
			s.onComplete(s.Reply())
		}
		return Chunk{}, io.EOF
	}
	if err != nil {
		s.err = err
		return Chunk{}, err
	}

	s.text.WriteString(chunk.Text)
	if chunk.Grounding != nil {
		if s.grounding == nil {
			s.grounding = &GroundingMetadata{}
		}
		s.grounding.merge(chunk.Grounding)
	}
	if chunk.FinishReason != "" {
		s.finish = chunk.FinishReason
	}
	return chunk, nil
}

// Text returns the text received so far.
func (s *ChunkStream) Text() string {
	return s.text.String()
}

// FinishReason returns the last finish reason reported by the provider.
func (s *ChunkStream) FinishReason() string {
	return s.finish
}

// Reply returns the model turn assembled so far.
func (s *ChunkStream) Reply() Content {
	return ModelContent(s.text.String(), s.grounding)
}

// Close releases the underlying resources. It is safe to call more than once.
func (s *ChunkStream) Close() error {
	s.closeOnce.Do(func() {
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
	})
	return s.closeErr
}
