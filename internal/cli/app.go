// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/config"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/index"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/logging"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/storage"
)

// App carries the loaded configuration and the shared resources commands
// use. Stores are opened on first use so commands that don't need them
// never touch the disk.
type App struct {
	Args       Args
	Config     *config.Config
	ConfigPath string
	Log        *slog.Logger

	Out io.Writer
	Err io.Writer
	In  io.Reader

	logCloser io.Closer
	store     *storage.ConversationStore
	library   *index.Library
}

// NewApp loads the configuration named by args (or the default one),
// applies the command-line overrides and opens the log file.
func NewApp(args Args) (*App, error) {
	cfg, path, err := loadConfig(args.ConfigPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		Args:       args,
		Config:     cfg,
		ConfigPath: path,
		Out:        os.Stdout,
		Err:        os.Stderr,
		In:         os.Stdin,
	}
	if err := a.applyOverrides(cfg); err != nil {
		return nil, err
	}

	a.Log = logging.Discard()
	if logPath, err := cfg.LogPath(); err == nil {
		log, closer, err := logging.Open(logPath, cfg.Log.Level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", WarningStyle.Render("Warning:"), err)
		} else {
			a.Log, a.logCloser = log, closer
		}
	}
	a.Log.Debug("config loaded", "path", path, "provider", cfg.Provider, "model", cfg.Model())
	return a, nil
}

// loadConfig loads path, or the default config file when path is empty. A
// named file that does not exist yet yields the defaults so "config init"
// can create it.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, "", err
		}
		resolved, err := defaultConfigPath()
		if err != nil {
			return nil, "", err
		}
		return cfg, resolved, nil
	}

	config.LoadDotEnv()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		cfg := config.Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, "", fmt.Errorf("invalid config: %w", err)
		}
		return cfg, path, nil
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// defaultConfigPath is the file config.Load read: config.toml, or
// config.json when only that exists.
func defaultConfigPath() (string, error) {
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := config.ConfigPathJSON()
	if err == nil {
		if _, err := os.Stat(jsonPath); err == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

// applyOverrides applies --provider and --model. It runs again on every
// config reload so the flags keep winning over the file.
func (a *App) applyOverrides(cfg *config.Config) error {
	if a.Args.Provider != "" {
		cfg.Provider = strings.ToLower(strings.TrimSpace(a.Args.Provider))
	}
	if a.Args.Model != "" {
		cfg.SetModel(a.Args.Model)
	}
	if a.Args.Provider == "" && a.Args.Model == "" {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return &UsageError{Message: err.Error()}
	}
	return nil
}

// Connect builds the provider for cfg after reapplying the flag overrides.
func (a *App) Connect(cfg *config.Config) (llm.Provider, error) {
	if err := a.applyOverrides(cfg); err != nil {
		return nil, err
	}
	return NewProvider(cfg, a.Log)
}

// Store opens the conversation store.
func (a *App) Store() (*storage.ConversationStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	dir, err := a.Config.ConversationsDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewConversationStore(dir, a.Config.Storage.MaxConversations)
	if err != nil {
		return nil, &CommandError{Command: "storage", Action: "open", Err: err}
	}
	a.store = store
	return store, nil
}

// Library opens the citation library.
func (a *App) Library() (*index.Library, error) {
	if a.library != nil {
		return a.library, nil
	}
	path, err := a.Config.LibraryPath()
	if err != nil {
		return nil, err
	}
	lib, err := index.Open(path)
	if err != nil {
		return nil, &CommandError{Command: "sources", Action: "open", Err: err}
	}
	a.library = lib
	return lib, nil
}

// Close releases the library and the log file.
func (a *App) Close() error {
	var errs []error
	if a.library != nil {
		errs = append(errs, a.library.Close())
		a.library = nil
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
		a.logCloser = nil
	}
	return errors.Join(errs...)
}

// styled reports whether output gets colors and markdown styling.
func (a *App) styled() bool {
	return !a.Args.Plain && ColorsEnabled()
}

// infof prints a status line unless --quiet is set. Status lines go to
// stderr so stdout carries only the answer.
func (a *App) infof(format string, args ...any) {
	if a.Args.Quiet {
		return
	}
	fmt.Fprintf(a.Err, format+"\n", args...)
}
