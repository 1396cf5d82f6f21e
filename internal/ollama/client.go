// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

// ProviderName identifies this provider in config and logs.
const ProviderName = "ollama"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeModelNotFound
	ErrTypeInvalidResponse
)

// IsNotRunning reports whether err means the Ollama server could not be reached.
func IsNotRunning(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeNotRunning
}

// IsModelNotFound reports whether err means the model is not pulled.
func IsModelNotFound(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeModelNotFound
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434)
	BaseURL string

	// Model to chat with (default: "llama3.2")
	Model string

	// Timeout for non-streaming requests such as CheckRunning (default: 5s)
	Timeout time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:11434",
		Model:   "llama3.2",
		Timeout: 5 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is an llm.Provider backed by a local Ollama server. Ollama has no
// web search, so replies never carry grounding metadata.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	cfg := *config

	// Fill in defaults for any zero values
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		config: &cfg,
		// No client timeout: streaming lifetime is controlled by the context.
		httpClient: &http.Client{},
		log:        log.With("component", ProviderName),
	}
}

// Name implements llm.Provider.
func (c *Client) Name() string { return ProviderName }

// Model implements llm.Provider.
func (c *Client) Model() string { return c.config.Model }

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.config.BaseURL }

// NewSession implements llm.Provider. It never contacts the server; an
// unreachable server surfaces on the first SendStream.
func (c *Client) NewSession(cfg llm.SessionConfig) (llm.Session, error) {
	return &session{
		client:      c,
		instruction: cfg.SystemInstruction,
		history:     llm.NewHistory(cfg.History),
	}, nil
}

// CheckRunning verifies the server answers on /api/tags.
func (c *Client) CheckRunning(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running at " + c.config.BaseURL, Cause: llm.ErrUnavailable}
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{Type: ErrTypeNotRunning, Message: fmt.Sprintf("Ollama returned HTTP %d", resp.StatusCode), Cause: llm.ErrUnavailable}
	}
	return nil
}

// openStream posts a streaming chat request.
func (c *Client) openStream(ctx context.Context, body ChatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running at " + c.config.BaseURL, Cause: llm.ErrUnavailable}
	}
	c.log.Debug("stream opened", "status", resp.StatusCode, "model", body.Model, "latency", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		defer drainAndClose(resp.Body)
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, parseError(resp.StatusCode, body.Model, data)
	}
	return resp, nil
}

// parseError converts an HTTP error response to a ClientError.
func parseError(status int, model string, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var oe OllamaError
	if err := json.Unmarshal(body, &oe); err == nil && oe.Error != "" {
		msg = oe.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	apiErr := llm.NewAPIError(ProviderName, status, msg)
	if status == http.StatusNotFound {
		return &ClientError{
			Type:    ErrTypeModelNotFound,
			Message: fmt.Sprintf("model %q not found (run: ollama pull %s)", model, model),
			Cause:   apiErr,
		}
	}
	return apiErr
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
	r.Close()
}

// =============================================================================
// SESSION
// =============================================================================

type session struct {
	client      *Client
	instruction string
	history     *llm.History
}

// SendStream implements llm.Session.
func (s *session) SendStream(ctx context.Context, message string) (*llm.ChunkStream, error) {
	user := llm.UserContent(message)

	req := ChatRequest{Model: s.client.config.Model, Stream: true}
	if s.instruction != "" {
		req.Messages = append(req.Messages, Message{Role: "system", Content: s.instruction})
	}
	for _, c := range s.history.Contents() {
		req.Messages = append(req.Messages, toMessage(c))
	}
	req.Messages = append(req.Messages, toMessage(user))

	resp, err := s.client.openStream(ctx, req)
	if err != nil {
		return nil, err
	}

	reader := NewStreamReader(resp.Body)
	next := func() (llm.Chunk, error) {
		chunk, err := reader.Next()
		if err != nil && ctx.Err() != nil && !errors.Is(err, io.EOF) {
			return llm.Chunk{}, ctx.Err()
		}
		return chunk, err
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
