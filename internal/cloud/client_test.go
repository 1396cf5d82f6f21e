// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

type capture struct {
	mu   sync.Mutex
	reqs []ChatRequest
	auth []string
}

func (c *capture) last() (ChatRequest, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reqs[len(c.reqs)-1], c.auth[len(c.auth)-1]
}

func newServer(t *testing.T, status int, events ...string) (*httptest.Server, *capture) {
	t.Helper()
	rec := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		rec.mu.Lock()
		rec.reqs = append(rec.reqs, req)
		rec.auth = append(rec.auth, r.Header.Get("Authorization"))
		rec.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			io.WriteString(w, events[0])
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, ": OPENROUTER PROCESSING\n\n")
		for _, e := range events {
			fmt.Fprintf(w, "data: %s\n\n", e)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func collect(s *llm.ChunkStream) (string, error) {
	defer s.Close()
	for {
		_, err := s.Next()
		if err == io.EOF {
			return s.Text(), nil
		}
		if err != nil {
			return s.Text(), err
		}
	}
}

func TestOpenRouter_MissingKey(t *testing.T) {
	_, err := NewOpenRouterClient("  ").NewSession(llm.SessionConfig{})
	assert.ErrorIs(t, err, llm.ErrMissingCredentials)
}

func TestOpenRouter_WithModelResolvesFriendlyNames(t *testing.T) {
	c := NewOpenRouterClient("k").WithModel("gpt4o-mini")
	assert.Equal(t, "openai/gpt-4o-mini", c.Model())
	assert.Equal(t, "x/y", c.WithModel("x/y").Model())
	assert.Equal(t, "x/y", c.WithModel("").Model())
}

func TestOpenRouter_StreamWithCitations(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK,
		`{"choices":[{"delta":{"role":"assistant","content":"Top-up "}}]}`,
		`{"choices":[{"delta":{"content":"starts Friday.","annotations":[`+
			`{"type":"url_citation","url_citation":{"url":"https://ff.garena.com/news","title":"News"}},`+
			`{"type":"file"}]}}]}`,
		`{"choices":[{"delta":{"content":""},"finish_reason":"stop"}]}`,
		`[DONE]`,
	)

	c := NewOpenRouterClient("sk-or-test").WithBaseURL(srv.URL)
	sess, err := c.NewSession(llm.SessionConfig{
		SystemInstruction: "persona",
		Tools:             llm.Tools{WebSearch: true},
	})
	require.NoError(t, err)

	s, err := sess.SendStream(context.Background(), "When is the next Top-up event?")
	require.NoError(t, err)
	text, err := collect(s)
	require.NoError(t, err)
	assert.Equal(t, "Top-up starts Friday.", text)
	assert.Equal(t, "stop", s.FinishReason())

	req, auth := rec.last()
	assert.Equal(t, "Bearer sk-or-test", auth)
	assert.True(t, req.Stream)
	assert.Equal(t, []Plugin{{ID: "web"}}, req.Plugins)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, ChatMessage{Role: "system", Content: "persona"}, req.Messages[0])
	assert.Equal(t, "user", req.Messages[1].Role)

	history, err := sess.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	g := history[1].Parts[0].Grounding
	require.NotNil(t, g)
	require.Len(t, g.Chunks, 1)
	assert.Equal(t, "https://ff.garena.com/news", g.Chunks[0].Web.URI)

	// The second request replays the exchange with the assistant role.
	s, err = sess.SendStream(context.Background(), "and after?")
	require.NoError(t, err)
	_, _ = collect(s)
	req, _ = rec.last()
	require.Len(t, req.Messages, 4)
	assert.Equal(t, "assistant", req.Messages[2].Role)
	assert.Equal(t, "Top-up starts Friday.", req.Messages[2].Content)
}

func TestOpenRouter_ErrorResponses(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusUnauthorized, `{"error":{"code":401,"message":"No auth credentials found"}}`, llm.ErrUnauthorized},
		{http.StatusTooManyRequests, `{"error":{"code":"rate_limited","message":"slow down"}}`, llm.ErrRateLimited},
		{http.StatusBadGateway, `bad gateway`, llm.ErrServer},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv, _ := newServer(t, tc.status, tc.body)
			sess, err := NewOpenRouterClient("k").WithBaseURL(srv.URL).NewSession(llm.SessionConfig{})
			require.NoError(t, err)

			_, err = sess.SendStream(context.Background(), "hi")
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestOpenRouter_MidStreamError(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK,
		`{"choices":[{"delta":{"content":"par"}}]}`,
		`{"error":{"code":502,"message":"provider disconnected"}}`,
	)
	sess, _ := NewOpenRouterClient("k").WithBaseURL(srv.URL).NewSession(llm.SessionConfig{})

	s, err := sess.SendStream(context.Background(), "hi")
	require.NoError(t, err)
	text, err := collect(s)
	assert.ErrorIs(t, err, llm.ErrServer)
	assert.Equal(t, "par", text)

	h, _ := sess.History()
	assert.Empty(t, h)
}
