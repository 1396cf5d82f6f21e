// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

// =============================================================================
// SSE READER TESTS
// =============================================================================

func TestSSEReader_ReadEvent(t *testing.T) {
	input := ": keep-alive\n" +
		"data: {\"a\":1}\n\n" +
		"event: update\r\n" +
		"data: line one\r\n" +
		"data:line two\r\n\r\n" +
		"data: [DONE]"

	r := NewSSEReader(strings.NewReader(input))

	typ, data, err := r.ReadEvent()
	if err != nil || typ != "" || string(data) != `{"a":1}` {
		t.Fatalf("event 1 = (%q, %q, %v)", typ, data, err)
	}

	typ, data, err = r.ReadEvent()
	if err != nil || typ != "update" || string(data) != "line one\nline two" {
		t.Fatalf("event 2 = (%q, %q, %v)", typ, data, err)
	}

	_, data, err = r.ReadEvent()
	if err != nil || string(data) != "[DONE]" {
		t.Fatalf("event 3 = (%q, %v), want trailing event without newline", data, err)
	}

	if _, _, err = r.ReadEvent(); err != io.EOF {
		t.Errorf("final ReadEvent() error = %v, want io.EOF", err)
	}
}

func TestSSEReader_EmptyStream(t *testing.T) {
	r := NewSSEReader(strings.NewReader("\n\n"))
	if _, _, err := r.ReadEvent(); err != io.EOF {
		t.Errorf("ReadEvent() error = %v, want io.EOF", err)
	}
}

func TestSSEReader_OversizedLine(t *testing.T) {
	r := NewSSEReader(strings.NewReader("data: " + strings.Repeat("x", MaxEventSize+1) + "\n\n"))
	if _, _, err := r.ReadEvent(); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("ReadEvent() error = %v, want ErrMalformedResponse", err)
	}
}

// =============================================================================
// CHUNK STREAM TESTS
// =============================================================================

type countingCloser struct{ n int }

func (c *countingCloser) Close() error {
	c.n++
	return nil
}

func sliceNext(chunks []Chunk, tail error) func() (Chunk, error) {
	i := 0
	return func() (Chunk, error) {
		if i < len(chunks) {
			c := chunks[i]
			i++
			return c, nil
		}
		return Chunk{}, tail
	}
}

func TestChunkStream_AccumulatesReply(t *testing.T) {
	chunks := []Chunk{
		{Text: "Hel"},
		{Text: "lo", Grounding: &GroundingMetadata{Chunks: []GroundingChunk{{Web: &WebRef{URI: "u1", Title: "t1"}}}}},
		{Text: "!", FinishReason: "STOP", Grounding: &GroundingMetadata{Queries: []string{"q"}}},
	}
	closer := &countingCloser{}
	s := NewChunkStream(sliceNext(chunks, io.EOF), closer)

	var completed *Content
	s.OnComplete(func(reply Content) { completed = &reply })

	var got []string
	for {
		c, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		got = append(got, c.Text)
	}

	if strings.Join(got, "|") != "Hel|lo|!" {
		t.Errorf("chunks = %v", got)
	}
	if completed == nil {
		t.Fatal("OnComplete was not called")
	}
	if completed.Role != RoleModel || completed.Text() != "Hello!" {
		t.Errorf("reply = %+v", completed)
	}
	g := completed.Parts[0].Grounding
	if g == nil || len(g.Chunks) != 1 || len(g.Queries) != 1 {
		t.Errorf("grounding = %+v", g)
	}
	if s.FinishReason() != "STOP" {
		t.Errorf("FinishReason() = %q", s.FinishReason())
	}

	if _, err := s.Next(); err != io.EOF {
		t.Errorf("Next() after EOF = %v, want io.EOF", err)
	}

	_ = s.Close()
	_ = s.Close()
	if closer.n != 1 {
		t.Errorf("closer called %d times, want 1", closer.n)
	}
}

func TestChunkStream_ErrorIsSticky(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewChunkStream(sliceNext([]Chunk{{Text: "a"}}, boom), nil)

	called := false
	s.OnComplete(func(Content) { called = true })

	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Next(); !errors.Is(err, boom) {
		t.Fatalf("Next() error = %v, want %v", err, boom)
	}
	if _, err := s.Next(); !errors.Is(err, boom) {
		t.Errorf("repeated Next() error = %v, want %v", err, boom)
	}
	if called {
		t.Error("OnComplete must not run after a failure")
	}
	if s.Text() != "a" {
		t.Errorf("Text() = %q", s.Text())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() with nil closer = %v", err)
	}
}

// =============================================================================
// HISTORY / ERROR TESTS
// =============================================================================

func TestHistory_RecordAndCopy(t *testing.T) {
	h := NewHistory([]Content{UserContent("seed"), ModelContent("ok", nil)})
	h.Record(UserContent("q"), ModelContent("a", nil))

	got := h.Contents()
	if len(got) != 4 || h.Len() != 4 {
		t.Fatalf("len = %d", len(got))
	}
	got[0] = Content{}
	if h.Contents()[0].Text() != "seed" {
		t.Error("Contents() must return a copy")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusNotFound, ErrModelNotFound},
		{http.StatusBadGateway, ErrServer},
		{http.StatusBadRequest, ErrBadRequest},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			err := NewAPIError("gemini", tc.status, "boom")
			if !errors.Is(err, tc.want) {
				t.Errorf("NewAPIError(%d) = %v, want Is(%v)", tc.status, err, tc.want)
			}
		})
	}
}

func TestInitError(t *testing.T) {
	err := error(&InitError{Provider: "gemini", Err: ErrMissingCredentials})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Error("InitError should unwrap to ErrMissingCredentials")
	}
	if err.Error() != "gemini: API key is not configured" {
		t.Errorf("Error() = %q", err.Error())
	}
}
