// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/util"
)

// Provider names accepted by Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ghost configuration.
type Config struct {
	// Provider selects the chat backend: "gemini", "openrouter" or "ollama".
	Provider string `toml:"provider" json:"provider"`

	Gemini     GeminiConfig     `toml:"gemini" json:"gemini"`
	OpenRouter OpenRouterConfig `toml:"openrouter" json:"openrouter"`
	Ollama     OllamaConfig     `toml:"ollama" json:"ollama"`
	Assistant  AssistantConfig  `toml:"assistant" json:"assistant"`
	Stream     StreamConfig     `toml:"stream" json:"stream"`
	Storage    StorageConfig    `toml:"storage" json:"storage"`
	UI         UIConfig         `toml:"ui" json:"ui"`
	Log        LogConfig        `toml:"log" json:"log"`
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey  string `toml:"api_key" json:"api_key"`
	Model   string `toml:"model" json:"model"`
	BaseURL string `toml:"base_url" json:"base_url"`
	// SearchGrounding enables the google_search tool
	SearchGrounding bool `toml:"search_grounding" json:"search_grounding"`
	// RequestsPerMinute paces requests; 0 disables pacing
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// OpenRouterConfig configures the OpenRouter provider.
type OpenRouterConfig struct {
	APIKey    string `toml:"api_key" json:"api_key"`
	Model     string `toml:"model" json:"model"`
	BaseURL   string `toml:"base_url" json:"base_url"`
	WebSearch bool   `toml:"web_search" json:"web_search"`
}

// OllamaConfig configures the local Ollama provider.
type OllamaConfig struct {
	URL   string `toml:"url" json:"url"`
	Model string `toml:"model" json:"model"`
}

// AssistantConfig holds the persona.
type AssistantConfig struct {
	SystemInstruction string   `toml:"system_instruction" json:"system_instruction"`
	ExamplePrompts    []string `toml:"example_prompts" json:"example_prompts"`
}

// StreamConfig controls reply streaming.
type StreamConfig struct {
	// IdleTimeoutSecs fails a reply after this long without data; 0 disables
	IdleTimeoutSecs int `toml:"idle_timeout_secs" json:"idle_timeout_secs"`
}

// StorageConfig controls conversation persistence.
type StorageConfig struct {
	// Dir overrides the conversations directory (default: ~/.ghost/conversations)
	Dir string `toml:"dir" json:"dir"`
	// Autosave writes the conversation after each completed exchange
	Autosave bool `toml:"autosave" json:"autosave"`
	// MaxConversations caps saved conversations; oldest are pruned
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// AltScreen runs the TUI in the alternate screen buffer
	AltScreen bool `toml:"alt_screen" json:"alt_screen"`
	// WordWrap wraps plain output to the terminal width
	WordWrap bool `toml:"word_wrap" json:"word_wrap"`
}

// LogConfig configures the log file.
type LogConfig struct {
	// Path of the log file (default: ~/.ghost/ghost.log)
	Path string `toml:"path" json:"path"`
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Provider: ProviderGemini,
		Gemini: GeminiConfig{
			Model:             "gemini-2.5-flash",
			SearchGrounding:   true,
			RequestsPerMinute: 10,
		},
		OpenRouter: OpenRouterConfig{
			Model:     "openrouter/auto",
			WebSearch: true,
		},
		Ollama: OllamaConfig{
			URL:   "http://127.0.0.1:11434",
			Model: "llama3.2",
		},
		Assistant: AssistantConfig{
			SystemInstruction: DefaultSystemInstruction,
			ExamplePrompts:    append([]string(nil), DefaultExamplePrompts...),
		},
		Stream: StreamConfig{
			IdleTimeoutSecs: 90,
		},
		Storage: StorageConfig{
			Autosave:         true,
			MaxConversations: 100,
		},
		UI: UIConfig{
			Theme:     "dark",
			AltScreen: true,
			WordWrap:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// IdleTimeout returns the stream idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Stream.IdleTimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ghost configuration directory path. GHOST_HOME
// overrides the default ~/.ghost.
func ConfigDir() (string, error) {
	if dir := os.Getenv("GHOST_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ghost"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ConversationsDir returns where conversations are stored.
func (c *Config) ConversationsDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conversations"), nil
}

// LibraryPath returns the citation library database path.
func (c *Config) LibraryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sources.db"), nil
}

// LogPath returns the log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ghost.log"), nil
}

// ensureSecurePermissions tightens config files to 0600; they hold API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults. .env files and
// environment overrides are applied last.
func Load() (*Config, error) {
	LoadDotEnv()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	return cfg, cfg.finish()
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies environment overrides and defaults, then validates.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// SetDefaults fills in values that must never be empty.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Provider == "" {
		c.Provider = d.Provider
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.OpenRouter.Model == "" {
		c.OpenRouter.Model = d.OpenRouter.Model
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = d.Ollama.URL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = d.Ollama.Model
	}
	if strings.TrimSpace(c.Assistant.SystemInstruction) == "" {
		c.Assistant.SystemInstruction = d.Assistant.SystemInstruction
	}
	if c.Assistant.ExamplePrompts == nil {
		c.Assistant.ExamplePrompts = d.Assistant.ExamplePrompts
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# ghost configuration file\n")
	buf.WriteString("# API keys may also come from GEMINI_API_KEY / OPENROUTER_API_KEY or a .env file\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns ValidateErrors when any
// field is out of range. A missing API key is not a validation error: it is
// reported when the chat session starts.
func (c *Config) Validate() error {
	var errs ValidateErrors

	switch c.Provider {
	case ProviderGemini, ProviderOpenRouter, ProviderOllama:
	default:
		errs = append(errs, ValidationError{
			Field:   "provider",
			Message: fmt.Sprintf("invalid provider '%s', must be one of: gemini, openrouter, ollama", c.Provider),
		})
	}

	for field, raw := range map[string]string{
		"gemini.base_url":     c.Gemini.BaseURL,
		"openrouter.base_url": c.OpenRouter.BaseURL,
		"ollama.url":          c.Ollama.URL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("invalid URL '%s'", raw)})
		}
	}

	if c.Gemini.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "gemini.requests_per_minute", Message: "cannot be negative"})
	}
	if c.Stream.IdleTimeoutSecs < 0 || c.Stream.IdleTimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "stream.idle_timeout_secs",
			Message: fmt.Sprintf("must be 0-3600, got %d", c.Stream.IdleTimeoutSecs),
		})
	}
	if c.Storage.MaxConversations < 0 {
		errs = append(errs, ValidationError{Field: "storage.max_conversations", Message: "cannot be negative"})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - GHOST_PROVIDER: overrides provider
//   - GHOST_MODEL: overrides the model of the selected provider
//   - GEMINI_API_KEY (or API_KEY): overrides gemini.api_key
//   - OPENROUTER_API_KEY: overrides openrouter.api_key
//   - OLLAMA_HOST: overrides ollama.url
//   - GHOST_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if p := os.Getenv("GHOST_PROVIDER"); p != "" {
		c.Provider = strings.ToLower(p)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	} else if key := os.Getenv("API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}

	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.OpenRouter.APIKey = key
	}

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		c.Ollama.URL = host
	}

	if level := os.Getenv("GHOST_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	if model := os.Getenv("GHOST_MODEL"); model != "" {
		c.SetModel(model)
	}
}

// SetModel sets the model of the selected provider.
func (c *Config) SetModel(model string) {
	switch c.Provider {
	case ProviderOpenRouter:
		c.OpenRouter.Model = model
	case ProviderOllama:
		c.Ollama.Model = model
	default:
		c.Gemini.Model = model
	}
}

// Model returns the model of the selected provider.
func (c *Config) Model() string {
	switch c.Provider {
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	case ProviderOllama:
		return c.Ollama.Model
	default:
		return c.Gemini.Model
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "gemini.model").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int:
			intVal, err := strconv.Atoi(strVal)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(int64(intVal))
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.IsValid() && val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Assistant.ExamplePrompts = append([]string(nil), c.Assistant.ExamplePrompts...)
	return &clone
}

// String returns the config as TOML with API keys redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Gemini.APIKey != "" {
		safe.Gemini.APIKey = "[REDACTED]"
	}
	if safe.OpenRouter.APIKey != "" {
		safe.OpenRouter.APIKey = "[REDACTED]"
	}

	var buf bytes.Buffer
	_ = toml.NewEncoder(&buf).Encode(safe)
	return buf.String()
}
