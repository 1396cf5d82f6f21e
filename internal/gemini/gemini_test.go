// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

type recorder struct {
	mu   sync.Mutex
	reqs []GenerateRequest
}

func (r *recorder) get(i int) GenerateRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reqs[i]
}

func sseServer(t *testing.T, handler func(w http.ResponseWriter, req GenerateRequest)) (*httptest.Server, *recorder) {
	t.Helper()
	requests := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.5-flash:streamGenerateContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("alt = %q, want sse", r.URL.Query().Get("alt"))
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		requests.mu.Lock()
		requests.reqs = append(requests.reqs, req)
		requests.mu.Unlock()
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv, requests
}

func writeEvents(w http.ResponseWriter, events ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, e := range events {
		fmt.Fprintf(w, "data: %s\r\n\r\n", e)
	}
}

func drain(t *testing.T, s *llm.ChunkStream) ([]string, error) {
	t.Helper()
	defer s.Close()
	var out []string
	for {
		c, err := s.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, c.Text)
	}
}

func TestNewSession_MissingKey(t *testing.T) {
	c := New(Config{})
	_, err := c.NewSession(llm.SessionConfig{})

	var initErr *llm.InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("NewSession() error = %v, want *llm.InitError", err)
	}
	if !errors.Is(err, llm.ErrMissingCredentials) {
		t.Errorf("error should wrap ErrMissingCredentials: %v", err)
	}
	if c.Model() != DefaultModel || c.Name() != "gemini" {
		t.Errorf("defaults = (%q, %q)", c.Name(), c.Model())
	}
}

func TestSendStream_GroundedReply(t *testing.T) {
	srv, requests := sseServer(t, func(w http.ResponseWriter, req GenerateRequest) {
		writeEvents(w,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hel"}]}}]}`,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"lo"}]}}]}`,
			`{"candidates":[{"content":{"role":"model","parts":[{"text":"!"}]},"finishReason":"STOP",`+
				`"groundingMetadata":{"webSearchQueries":["free fire events"],"groundingChunks":[`+
				`{"web":{"uri":"https://ff.garena.com","title":"garena.com"}},{}]}}],`+
				`"usageMetadata":{"promptTokenCount":5,"candidatesTokenCount":3,"totalTokenCount":8}}`,
		)
	})

	c := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	sess, err := c.NewSession(llm.SessionConfig{
		SystemInstruction: "You are a helper.",
		Tools:             llm.Tools{WebSearch: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	stream, err := sess.SendStream(context.Background(), "events?")
	if err != nil {
		t.Fatalf("SendStream() error = %v", err)
	}
	chunks, err := drain(t, stream)
	if err != nil {
		t.Fatalf("stream error = %v", err)
	}
	if strings.Join(chunks, "") != "Hello!" {
		t.Errorf("chunks = %q", chunks)
	}

	req := requests.get(0)
	if len(req.Contents) != 1 || req.Contents[0].Role != "user" || req.Contents[0].Parts[0].Text != "events?" {
		t.Errorf("contents = %+v", req.Contents)
	}
	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "You are a helper." {
		t.Errorf("systemInstruction = %+v", req.SystemInstruction)
	}
	if len(req.Tools) != 1 || req.Tools[0].GoogleSearch == nil {
		t.Errorf("tools = %+v", req.Tools)
	}

	history, _ := sess.History()
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2", len(history))
	}
	last := history[1]
	if last.Role != llm.RoleModel || last.Text() != "Hello!" {
		t.Errorf("model turn = %+v", last)
	}
	g := last.Parts[0].Grounding
	if g == nil || len(g.Chunks) != 2 || g.Chunks[0].Web.URI != "https://ff.garena.com" || g.Chunks[1].Web != nil {
		t.Errorf("grounding = %+v", g)
	}
}

func TestSendStream_SendsHistory(t *testing.T) {
	srv, requests := sseServer(t, func(w http.ResponseWriter, req GenerateRequest) {
		writeEvents(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	})

	c := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	sess, _ := c.NewSession(llm.SessionConfig{})

	for _, msg := range []string{"one", "two"} {
		s, err := sess.SendStream(context.Background(), msg)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := drain(t, s); err != nil {
			t.Fatal(err)
		}
	}

	second := requests.get(1)
	if len(second.Contents) != 3 {
		t.Fatalf("second request contents = %d, want 3", len(second.Contents))
	}
	if second.Contents[1].Role != "model" || second.Contents[1].Parts[0].Text != "ok" {
		t.Errorf("replayed reply = %+v", second.Contents[1])
	}
	if second.SystemInstruction != nil || second.Tools != nil {
		t.Error("no system instruction or tools expected")
	}
}

func TestSendStream_ErrorStatus(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
		msg    string
	}{
		{400, `{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`, llm.ErrBadRequest, "API key not valid."},
		{429, `{"error":{"code":429,"message":"Resource exhausted","status":"RESOURCE_EXHAUSTED"}}`, llm.ErrRateLimited, "Resource exhausted"},
		{503, `upstream unavailable`, llm.ErrServer, "upstream unavailable"},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			srv, _ := sseServer(t, func(w http.ResponseWriter, req GenerateRequest) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			c := New(Config{APIKey: "test-key", BaseURL: srv.URL})
			sess, _ := c.NewSession(llm.SessionConfig{})

			_, err := sess.SendStream(context.Background(), "hi")
			if !errors.Is(err, tc.want) {
				t.Fatalf("SendStream() error = %v, want %v", err, tc.want)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("error %q should contain %q", err.Error(), tc.msg)
			}
			if h, _ := sess.History(); len(h) != 0 {
				t.Errorf("history after failure = %d entries", len(h))
			}
		})
	}
}

func TestSendStream_MidStreamFailure(t *testing.T) {
	tests := []struct {
		name  string
		event string
		want  error
	}{
		{"error event", `{"error":{"code":500,"message":"internal"}}`, llm.ErrServer},
		{"malformed", `{"candidates":[`, llm.ErrMalformedResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := sseServer(t, func(w http.ResponseWriter, req GenerateRequest) {
				writeEvents(w, `{"candidates":[{"content":{"parts":[{"text":"part"}]}}]}`, tc.event)
			})
			c := New(Config{APIKey: "test-key", BaseURL: srv.URL})
			sess, _ := c.NewSession(llm.SessionConfig{})

			s, err := sess.SendStream(context.Background(), "hi")
			if err != nil {
				t.Fatal(err)
			}
			chunks, err := drain(t, s)
			if !errors.Is(err, tc.want) {
				t.Fatalf("stream error = %v, want %v", err, tc.want)
			}
			if len(chunks) != 1 || chunks[0] != "part" {
				t.Errorf("chunks before failure = %q", chunks)
			}
			if h, _ := sess.History(); len(h) != 0 {
				t.Error("failed exchange must not be recorded")
			}
		})
	}
}

func TestSendStream_SeededHistory(t *testing.T) {
	srv, requests := sseServer(t, func(w http.ResponseWriter, req GenerateRequest) {
		writeEvents(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	})
	c := New(Config{APIKey: "test-key", BaseURL: srv.URL, RequestsPerMinute: 60})
	sess, _ := c.NewSession(llm.SessionConfig{History: []llm.Content{
		llm.UserContent("earlier"), llm.ModelContent("answer", nil),
	}})

	s, err := sess.SendStream(context.Background(), "now")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = drain(t, s)

	if got := len(requests.get(0).Contents); got != 3 {
		t.Errorf("contents = %d, want 3", got)
	}
}
