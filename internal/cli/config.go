// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display the effective configuration, keys redacted
//   path                Show the configuration file path
//   init                Write a default configuration file
//   get <key>           Print one value (dot notation)
//   set <key> <value>   Set one value in the configuration file
//
// Examples:
//   ghost config
//   ghost config show --json
//   ghost config init
//   ghost config get gemini.model
//   ghost config set provider ollama
//   ghost config set gemini.api_key AIza...
//   ghost config set stream.idle_timeout_secs 120

package cli

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/config"
)

func (a *App) runConfig() error {
	sub := strings.ToLower(a.Args.Arg(0))
	switch sub {
	case "", "show":
		return a.configShow()
	case "path":
		fmt.Fprintln(a.Out, a.ConfigPath)
		return nil
	case "init":
		return a.configInit()
	case "get":
		if len(a.Args.Raw) != 2 {
			return ErrMissingArgument("key", "ghost config get <key>")
		}
		return a.configGet(a.Args.Arg(1))
	case "set":
		if len(a.Args.Raw) != 3 {
			return ErrMissingArgument("key and value", "ghost config set <key> <value>")
		}
		return a.configSet(a.Args.Arg(1), a.Args.Arg(2))
	}
	return &UsageError{
		Message:    fmt.Sprintf("unknown config subcommand %q", a.Args.Arg(0)),
		Suggestion: suggestFrom(sub, "show", "path", "init", "get", "set"),
	}
}

// redacted returns the effective config with API keys replaced by their
// fingerprints.
func (a *App) redacted() *config.Config {
	safe := a.Config.Clone()
	safe.Gemini.APIKey = maskAPIKey(safe.Gemini.APIKey)
	safe.OpenRouter.APIKey = maskAPIKey(safe.OpenRouter.APIKey)
	return safe
}

func (a *App) configShow() error {
	if a.Args.JSON {
		return writeJSON(a.Out, a.redacted())
	}

	status := "not created yet (run 'ghost config init')"
	if _, err := os.Stat(a.ConfigPath); err == nil {
		status = "loaded"
	}

	fmt.Fprintln(a.Out, TitleStyle.Render("ghost configuration"))
	fmt.Fprintln(a.Out, RenderSeparator(41))
	fmt.Fprintf(a.Out, "%s %s (%s)\n", RenderLabel("File"), a.ConfigPath, status)
	fmt.Fprintf(a.Out, "%s %s\n", RenderLabel("Provider"), a.Config.Provider)
	fmt.Fprintf(a.Out, "%s %s\n", RenderLabel("Model"), a.Config.Model())
	fmt.Fprintf(a.Out, "%s %s\n", RenderLabel("API key"), a.activeKeyStatus())
	fmt.Fprintf(a.Out, "%s %v\n", RenderLabel("Web search"), a.Config.WebSearch())
	fmt.Fprintln(a.Out, RenderSeparator(41))
	fmt.Fprint(a.Out, a.Config.String())
	return nil
}

// activeKeyStatus describes the credential the selected provider will use.
func (a *App) activeKeyStatus() string {
	switch a.Config.Provider {
	case config.ProviderGemini:
		return maskAPIKey(a.Config.Gemini.APIKey)
	case config.ProviderOpenRouter:
		return maskAPIKey(a.Config.OpenRouter.APIKey)
	}
	return "not required"
}

func (a *App) configInit() error {
	if _, err := os.Stat(a.ConfigPath); err == nil && !a.Args.Yes {
		return &UsageError{Message: fmt.Sprintf("%s already exists; pass --yes to overwrite it with defaults", a.ConfigPath)}
	}
	if err := config.SaveTOML(config.Default(), tomlPath(a.ConfigPath)); err != nil {
		return &CommandError{Command: "config", Action: "init", Err: err}
	}
	a.infof("%s wrote %s", SuccessStyle.Render("OK"), tomlPath(a.ConfigPath))
	return nil
}

func (a *App) configGet(key string) error {
	v, err := a.Config.Get(key)
	if err != nil {
		return &UsageError{Message: err.Error()}
	}
	if s, ok := v.(string); ok {
		fmt.Fprintln(a.Out, maskIfSecret(key, s))
		return nil
	}
	if a.Args.JSON {
		return writeJSON(a.Out, v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, string(data))
	return nil
}

// configSet edits the file, not the effective config, so environment
// overrides and flags are never written back.
func (a *App) configSet(key, value string) error {
	cfg := config.Default()
	if _, err := os.Stat(a.ConfigPath); err == nil {
		load := config.LoadTOML
		if strings.HasSuffix(a.ConfigPath, ".json") {
			load = config.LoadJSON
		}
		if err := load(cfg, a.ConfigPath); err != nil {
			return err
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Message: err.Error()}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	target := tomlPath(a.ConfigPath)
	if err := config.SaveTOML(cfg, target); err != nil {
		return &CommandError{Command: "config", Action: "set", Err: err}
	}
	a.Log.Info("config updated", "key", key, "path", target)
	a.infof("%s %s = %s", SuccessStyle.Render("OK"), key, maskIfSecret(key, value))
	if target != a.ConfigPath {
		a.infof("Saved to %s, which takes precedence over %s.", target, a.ConfigPath)
	}
	return nil
}

// tomlPath maps a JSON config path to its TOML sibling; config is always
// written as TOML.
func tomlPath(path string) string {
	if strings.HasSuffix(path, ".json") {
		return strings.TrimSuffix(path, ".json") + ".toml"
	}
	return path
}

// =============================================================================
// HELPERS
// =============================================================================

// maskAPIKey shows a SHA-256 fingerprint instead of any part of the key.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) < 8 {
		return "[invalid key]"
	}
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x...", hash[:4])
}

// maskIfSecret masks the value if the key names a secret field.
func maskIfSecret(key, value string) string {
	keyLower := strings.ToLower(key)
	for _, s := range []string{"key", "secret", "token", "password"} {
		if strings.Contains(keyLower, s) {
			return maskAPIKey(value)
		}
	}
	return value
}
