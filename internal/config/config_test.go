// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

var envKeys = []string{
	"GHOST_PROVIDER", "GHOST_MODEL", "GEMINI_API_KEY", "API_KEY",
	"OPENROUTER_API_KEY", "OLLAMA_HOST", "GHOST_LOG_LEVEL",
}

// isolate points GHOST_HOME at a temp dir and clears every variable the
// config reads. Cleanup restores the previous environment.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("GHOST_HOME", home)
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, 90*time.Second, cfg.IdleTimeout())
	assert.Len(t, cfg.Assistant.ExamplePrompts, 5)
	assert.Contains(t, cfg.Assistant.SystemInstruction, "FREE FIRE Ghost Assistant")
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model())

	dir, _ := ConfigDir()
	assert.Equal(t, home, dir)
	convDir, _ := cfg.ConversationsDir()
	assert.Equal(t, filepath.Join(home, "conversations"), convDir)
}

func TestLoad_TOMLOverlaysDefaults(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.toml"), `
provider = "ollama"

[ollama]
model = "mistral"

[stream]
idle_timeout_secs = 0

[assistant]
example_prompts = []
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "mistral", cfg.Model())
	assert.Equal(t, "http://127.0.0.1:11434", cfg.Ollama.URL, "unset keys keep defaults")
	assert.Equal(t, time.Duration(0), cfg.IdleTimeout())
	assert.Empty(t, cfg.Assistant.ExamplePrompts, "an explicit empty list disables prompts")
	assert.True(t, cfg.Gemini.SearchGrounding)
}

func TestLoad_JSONFallback(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.json"), `{"provider":"openrouter","openrouter":{"model":"x/y"}}`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "x/y", cfg.Model())
}

func TestLoad_InvalidFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, "config.toml"), `provider = "skynet"`)

	_, err := Load()
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "provider", verrs[0].Field)
}

func TestLoad_FixesPermissions(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("provider = \"gemini\"\n"), 0o644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GHOST_PROVIDER", "OLLAMA")
	t.Setenv("GHOST_MODEL", "qwen2.5")
	t.Setenv("API_KEY", "from-api-key")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	t.Setenv("OLLAMA_HOST", "10.0.0.2:11434")
	t.Setenv("GHOST_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "qwen2.5", cfg.Ollama.Model)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "from-api-key", cfg.Gemini.APIKey)
	assert.Equal(t, "sk-or", cfg.OpenRouter.APIKey)
	assert.Equal(t, "http://10.0.0.2:11434", cfg.Ollama.URL)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("GEMINI_API_KEY", "preferred")
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "preferred", cfg.Gemini.APIKey)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".env"), "GEMINI_API_KEY=from-dotenv\nOPENROUTER_API_KEY=dotenv-or\n")
	t.Setenv("OPENROUTER_API_KEY", "real")

	loaded := LoadDotEnv()
	assert.Contains(t, loaded, filepath.Join(home, ".env"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Gemini.APIKey)
	assert.Equal(t, "real", cfg.OpenRouter.APIKey)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Ollama.URL = "not a url"
	cfg.Stream.IdleTimeoutSecs = -1
	cfg.UI.Theme = "neon"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))

	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"ollama.url", "stream.idle_timeout_secs", "ui.theme", "log.level"}, fields)
	assert.Contains(t, err.Error(), "ui.theme: invalid theme 'neon'")
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Provider = ProviderOpenRouter
	cfg.OpenRouter.APIKey = "sk-or-secret"
	cfg.Assistant.ExamplePrompts = []string{"one"}
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, loaded.Provider)
	assert.Equal(t, "sk-or-secret", loaded.OpenRouter.APIKey)
	assert.Equal(t, []string{"one"}, loaded.Assistant.ExamplePrompts)
	assert.Equal(t, cfg.Assistant.SystemInstruction, loaded.Assistant.SystemInstruction)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("gemini.requests_per_minute")
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	require.NoError(t, cfg.Set("stream.idle_timeout_secs", "30"))
	assert.Equal(t, 30*time.Second, cfg.IdleTimeout())

	require.NoError(t, cfg.Set("ui.alt-screen", "false"))
	assert.False(t, cfg.UI.AltScreen)

	assert.Error(t, cfg.Set("stream.idle_timeout_secs", "soon"))
	_, err = cfg.Get("gemini.nope")
	assert.EqualError(t, err, "unknown field: gemini.nope")
	_, err = cfg.Get("provider.name")
	assert.Error(t, err)
}

func TestString_RedactsKeys(t *testing.T) {
	cfg := Default()
	cfg.Gemini.APIKey = "AIza-hidden-key"
	cfg.OpenRouter.APIKey = "sk-or-hidden-key"

	out := cfg.String()
	assert.NotContains(t, out, "hidden-key")
	assert.Contains(t, out, "[REDACTED]")
	assert.Equal(t, "AIza-hidden-key", cfg.Gemini.APIKey, "original untouched")
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Assistant.ExamplePrompts[0] = "changed"
	assert.NotEqual(t, "changed", cfg.Assistant.ExamplePrompts[0])
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(cfg *Config, err error) {
			if err != nil {
				return
			}
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher time to register before changing the file.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		cfg := Default()
		cfg.Ollama.Model = "mistral"
		require.NoError(t, SaveTOML(cfg, path))

		select {
		case got := <-reloaded:
			assert.Equal(t, "mistral", got.Ollama.Model)
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestPersonaPrompts(t *testing.T) {
	for _, p := range DefaultExamplePrompts {
		assert.False(t, strings.TrimSpace(p) == "", "empty example prompt")
	}
}

func TestSession_WebSearchFollowsProvider(t *testing.T) {
	cfg := Default()
	history := []llm.Content{llm.UserContent("hi"), llm.ModelContent("hello", nil)}

	sess := cfg.Session(history)
	assert.Equal(t, DefaultSystemInstruction, sess.SystemInstruction)
	assert.True(t, sess.Tools.WebSearch)
	assert.Len(t, sess.History, 2)

	cfg.Gemini.SearchGrounding = false
	assert.False(t, cfg.Session(nil).Tools.WebSearch)

	cfg.Provider = ProviderOpenRouter
	assert.True(t, cfg.WebSearch())

	cfg.Provider = ProviderOllama
	assert.False(t, cfg.WebSearch())
}
