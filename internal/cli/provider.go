// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/cloud"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/config"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/gemini"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/ollama"
)

// siteURL identifies ghost to OpenRouter.
const siteURL = "https://github.com/bg9806664-lang/Freefire-Ai-Assistant"

// NewProvider builds the chat provider cfg selects. Missing credentials
// are reported when the first session opens, not here.
func NewProvider(cfg *config.Config, log *slog.Logger) (llm.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.New(gemini.Config{
			APIKey:            cfg.Gemini.APIKey,
			BaseURL:           cfg.Gemini.BaseURL,
			Model:             cfg.Gemini.Model,
			RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
			Logger:            log,
		}), nil

	case config.ProviderOpenRouter:
		return cloud.NewOpenRouterClient(cfg.OpenRouter.APIKey).
			WithBaseURL(cfg.OpenRouter.BaseURL).
			WithModel(cfg.OpenRouter.Model).
			WithSiteURL(siteURL).
			WithLogger(log), nil

	case config.ProviderOllama:
		return ollama.NewClientWithConfig(&ollama.ClientConfig{
			BaseURL: cfg.Ollama.URL,
			Model:   cfg.Ollama.Model,
			Logger:  log,
		}), nil
	}
	return nil, &UsageError{Message: fmt.Sprintf("unknown provider %q", cfg.Provider)}
}

// checkProvider fails early when a local Ollama server is not running, so
// line-mode commands report it before the prompt instead of on the first
// question.
func checkProvider(ctx context.Context, p llm.Provider) error {
	if oc, ok := p.(*ollama.Client); ok {
		return oc.CheckRunning(ctx)
	}
	return nil
}
