// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ghost.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (GHOST_*, GEMINI_API_KEY, OPENROUTER_API_KEY, OLLAMA_HOST)
//   - .env files (./.env, then ~/.ghost/.env), which never override real variables
//   - ~/.ghost/config.toml
//   - ~/.ghost/config.json
//   - Built-in defaults
//
// GHOST_HOME relocates the ~/.ghost directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.IdleTimeout()
//
// Watch reloads the file on change for long-running sessions:
//
//	go config.Watch(ctx, path, 0, func(cfg *config.Config, err error) { ... })
package config
