// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/muesli/termenv"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/storage"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/ui/chat"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/ui/styles"
)

// runTUI starts the full-screen chat. A provider that cannot be built is
// not fatal: the view reports it and picks up a fixed config file.
func (a *App) runTUI(ctx context.Context) error {
	if err := RequiresTTY("ghost"); err != nil {
		return err
	}

	provider, err := a.Connect(a.Config)
	if err != nil {
		var usage *UsageError
		if errors.As(err, &usage) {
			return err
		}
		a.Log.Warn("provider unavailable", "provider", a.Config.Provider, "err", err)
	}

	store, err := a.Store()
	if err != nil {
		a.Log.Warn("conversation history disabled", "err", err)
		store = nil
	}
	library, err := a.Library()
	if err != nil {
		a.Log.Warn("source library disabled", "err", err)
		library = nil
	}

	var resume *storage.StoredConversation
	if ref := a.Args.Arg(0); ref != "" {
		if store == nil {
			return fmt.Errorf("cannot resume %q: conversation history is unavailable", ref)
		}
		if resume, err = store.Resolve(ref); err != nil {
			return fmt.Errorf("conversation %q: %w", ref, err)
		}
	}

	theme := styles.NewTheme(a.Config.UI.Theme)
	if !a.styled() {
		theme = styles.NewThemeWithProfile(a.Config.UI.Theme, true, termenv.Ascii)
	}

	m := chat.New(ctx, chat.Options{
		Config:     a.Config,
		ConfigPath: a.ConfigPath,
		Provider:   provider,
		Connect:    a.Connect,
		Store:      store,
		Library:    library,
		Theme:      theme,
		Logger:     a.Log,
		Resume:     resume,
	})
	a.Log.Info("tui started", "provider", a.Config.Provider, "model", a.Config.Model())
	return chat.Run(m, a.Config.UI.AltScreen && !a.Args.NoAltScreen)
}
