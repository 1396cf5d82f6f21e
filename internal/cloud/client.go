// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

// Configuration constants for OpenRouter API.
const (
	// ProviderName identifies this provider in config and logs.
	ProviderName = "openrouter"

	// DefaultOpenRouterURL is the base URL for OpenRouter API.
	DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "openrouter/auto"

	// MaxErrorBody limits how much of an error response is read.
	MaxErrorBody = 64 * 1024
)

// sharedStreamingClient is used for streaming requests (no timeout, context-controlled).
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
	},
}

// OpenRouterModels maps friendly names to full model identifiers.
var OpenRouterModels = map[string]string{
	"auto":       "openrouter/auto",
	"gemini":     "google/gemini-2.5-flash",
	"gpt4o":      "openai/gpt-4o",
	"gpt4o-mini": "openai/gpt-4o-mini",
	"sonnet":     "anthropic/claude-3.5-sonnet",
	"llama3":     "meta-llama/llama-3-70b-instruct",
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", or "system"
	Content string `json:"content"`
}

// Plugin enables an OpenRouter plugin.
type Plugin struct {
	ID string `json:"id"`
}

// ChatRequest represents a request to the chat completions endpoint.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Plugins  []Plugin      `json:"plugins,omitempty"`
}

// apiErrorResponse represents an error response from the API.
type apiErrorResponse struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// toChatMessage converts provider-neutral content to OpenAI format.
func toChatMessage(c llm.Content) ChatMessage {
	role := c.Role
	if role == llm.RoleModel {
		role = "assistant"
	}
	return ChatMessage{Role: role, Content: c.Text()}
}

// =============================================================================
// CLIENT
// =============================================================================

// OpenRouterClient is a client for communicating with the OpenRouter API.
type OpenRouterClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	siteURL    string
	siteName   string
	log        *slog.Logger
}

// NewOpenRouterClient creates a new OpenRouter client with the given API key.
// If the API key is empty, NewSession fails with llm.ErrMissingCredentials.
func NewOpenRouterClient(apiKey string) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultOpenRouterURL,
		model:      DefaultModel,
		httpClient: sharedStreamingClient,
		siteName:   "ghost",
		log:        slog.Default().With("component", ProviderName),
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *OpenRouterClient) WithBaseURL(url string) *OpenRouterClient {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// WithModel sets the model, resolving friendly names.
func (c *OpenRouterClient) WithModel(model string) *OpenRouterClient {
	if model == "" {
		return c
	}
	if full, ok := OpenRouterModels[model]; ok {
		model = full
	}
	c.model = model
	return c
}

// WithHTTPClient replaces the HTTP client.
func (c *OpenRouterClient) WithHTTPClient(hc *http.Client) *OpenRouterClient {
	c.httpClient = hc
	return c
}

// WithSiteURL sets the site URL for rate limit categorization.
func (c *OpenRouterClient) WithSiteURL(url string) *OpenRouterClient {
	c.siteURL = url
	return c
}

// WithLogger sets the logger.
func (c *OpenRouterClient) WithLogger(l *slog.Logger) *OpenRouterClient {
	if l != nil {
		c.log = l.With("component", ProviderName)
	}
	return c
}

// Name implements llm.Provider.
func (c *OpenRouterClient) Name() string { return ProviderName }

// Model implements llm.Provider.
func (c *OpenRouterClient) Model() string { return c.model }

// IsConfigured returns true if the client has an API key configured.
func (c *OpenRouterClient) IsConfigured() bool {
	return c.apiKey != ""
}

// NewSession implements llm.Provider.
func (c *OpenRouterClient) NewSession(cfg llm.SessionConfig) (llm.Session, error) {
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

// setHeaders sets the required headers for OpenRouter API requests.
func (c *OpenRouterClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.siteName != "" {
		req.Header.Set("X-Title", c.siteName)
	}
}

// openStream posts a streaming chat request.
func (c *OpenRouterClient) openStream(ctx context.Context, body ChatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &llm.APIError{Provider: ProviderName, Message: err.Error(), Err: llm.ErrUnavailable}
	}
	// Don't log headers or body (may contain auth)
	c.log.Debug("stream opened", "status", resp.StatusCode, "model", c.model, "latency", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBody))
		return nil, handleErrorResponse(resp.StatusCode, data)
	}
	return resp, nil
}

// handleErrorResponse converts HTTP error responses to *llm.APIError.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return llm.NewAPIError(ProviderName, statusCode, apiErr.Error.Message)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return llm.NewAPIError(ProviderName, statusCode, msg)
}
