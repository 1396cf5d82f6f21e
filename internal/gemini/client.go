// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

// Configuration constants for the Gemini API.
const (
	// ProviderName identifies this provider in config and logs.
	ProviderName = "gemini"

	// DefaultBaseURL is the public Gemini endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// maxErrorBody limits how much of an error response is read.
	maxErrorBody = 64 * 1024
)

// sharedStreamingClient is used for streaming requests (no overall timeout,
// the caller's context controls the lifetime).
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
	},
}

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// RequestsPerMinute paces outgoing requests. Zero disables pacing.
	RequestsPerMinute int

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a Gemini llm.Provider.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// New creates a client. Missing credentials are reported by NewSession, not
// here, so a client can always be constructed.
func New(cfg Config) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		log:        cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.httpClient == nil {
		c.httpClient = sharedStreamingClient
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("component", ProviderName)
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}
	return c
}

// Name implements llm.Provider.
func (c *Client) Name() string { return ProviderName }

// Model implements llm.Provider.
func (c *Client) Model() string { return c.model }

// IsConfigured returns true if an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// NewSession implements llm.Provider.
func (c *Client) NewSession(cfg llm.SessionConfig) (llm.Session, error) {
	if !c.IsConfigured() {
		return nil, &llm.InitError{Provider: ProviderName, Err: llm.ErrMissingCredentials}
	}
	return &session{
		client:      c,
		instruction: cfg.SystemInstruction,
		webSearch:   cfg.Tools.WebSearch,
		history:     llm.NewHistory(cfg.History),
	}, nil
}

// streamURL returns the SSE endpoint for the configured model.
func (c *Client) streamURL() string {
	return fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.baseURL, url.PathEscape(c.model))
}

// openStream sends the request and returns the response once headers arrive.
func (c *Client) openStream(ctx context.Context, body GenerateRequest) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.streamURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &llm.APIError{Provider: ProviderName, Message: err.Error(), Err: llm.ErrUnavailable}
	}
	c.log.Debug("stream opened", "status", resp.StatusCode, "model", c.model, "latency", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseError(resp.StatusCode, data)
	}
	return resp, nil
}

// parseError converts an error response to an *llm.APIError.
func parseError(status int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return llm.NewAPIError(ProviderName, status, apiErr.Error.Message)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return llm.NewAPIError(ProviderName, status, msg)
}

// =============================================================================
// SESSION
// =============================================================================

type session struct {
	client      *Client
	instruction string
	webSearch   bool
	history     *llm.History
}

// SendStream implements llm.Session.
func (s *session) SendStream(ctx context.Context, message string) (*llm.ChunkStream, error) {
	user := llm.UserContent(message)

	req := GenerateRequest{}
	for _, c := range s.history.Contents() {
		req.Contents = append(req.Contents, toWire(c))
	}
	req.Contents = append(req.Contents, toWire(user))
	if s.instruction != "" {
		req.SystemInstruction = &Content{Parts: []Part{{Text: s.instruction}}}
	}
	if s.webSearch {
		req.Tools = []Tool{{GoogleSearch: &GoogleSearch{}}}
	}

	resp, err := s.client.openStream(ctx, req)
	if err != nil {
		return nil, err
	}

	reader := llm.NewSSEReader(resp.Body)
	next := func() (llm.Chunk, error) {
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

		var event GenerateResponse
		if err := json.Unmarshal(data, &event); err != nil {
			return llm.Chunk{}, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
		}
		if event.Error != nil {
			return llm.Chunk{}, llm.NewAPIError(ProviderName, event.Error.Code, event.Error.Message)
		}
		if event.PromptFeedback != nil && event.PromptFeedback.BlockReason != "" && len(event.Candidates) == 0 {
			return llm.Chunk{}, fmt.Errorf("prompt blocked: %s", event.PromptFeedback.BlockReason)
		}
		if event.UsageMetadata != nil {
			s.client.log.Debug("usage", "prompt_tokens", event.UsageMetadata.PromptTokenCount,
				"reply_tokens", event.UsageMetadata.CandidatesTokenCount)
		}
		return event.toChunk(), nil
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
