// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask
// Short:   Ask a single question and print the streamed answer
//
// Examples:
//   ghost ask "Which pet is best for solo rank?"
//   echo "Explain the zone timings" | ghost ask
//   ghost ask --json "Best gun for close range?"

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/stream"
)

// maxPipedQuestion caps a question read from stdin.
const maxPipedQuestion = 64 * 1024

// AskData is the JSON form of an answered question.
type AskData struct {
	Question       string            `json:"question"`
	Answer         string            `json:"answer"`
	Sources        []model.WebSource `json:"sources"`
	Provider       string            `json:"provider"`
	Model          string            `json:"model"`
	ConversationID string            `json:"conversation_id"`
}

func (a *App) runAsk(ctx context.Context) error {
	question, err := a.question()
	if err != nil {
		return err
	}

	provider, err := a.Connect(a.Config)
	if err != nil {
		return err
	}
	if err := checkProvider(ctx, provider); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := a.newPrinter()
	opts := stream.Options{IdleTimeout: a.Config.IdleTimeout(), Logger: a.Log}
	if !a.Args.JSON {
		opts.OnFragment = printer.Fragment
	}
	t := model.NewTranscript()
	acc := stream.New(t, provider, a.Config.Session(nil), opts)
	defer acc.Close()

	if a.styled() && !a.Args.JSON {
		a.infof("%s %s", GhostStyle.Render(model.RoleModel.DisplayName()),
			DimStyle.Render(provider.Name()+"/"+provider.Model()))
	}

	if err := runExchange(ctx, acc, question); err != nil {
		printer.Flush()
		return err
	}
	printer.Flush()

	entry, _ := t.Last()
	a.persist(ctx, t, entry, provider)

	if a.Args.JSON {
		return writeJSON(a.Out, AskData{
			Question:       question,
			Answer:         entry.Text,
			Sources:        entry.Sources,
			Provider:       provider.Name(),
			Model:          provider.Model(),
			ConversationID: t.ID(),
		})
	}
	printSources(a.Out, entry.Sources, a.styled())
	return nil
}

// question joins the positional arguments, or reads stdin when it is piped.
func (a *App) question() (string, error) {
	q := strings.TrimSpace(strings.Join(a.Args.Raw, " "))
	if q == "" && a.In != nil && !isTerminal(a.In) {
		data, err := io.ReadAll(io.LimitReader(a.In, maxPipedQuestion))
		if err != nil {
			return "", fmt.Errorf("reading question from stdin: %w", err)
		}
		q = strings.TrimSpace(string(data))
	}
	if q == "" {
		return "", ErrMissingArgument("question", `ghost ask "question"`)
	}
	return q, nil
}

// runExchange runs one exchange, reporting a session that never opened as
// its init error rather than a bare rejection.
func runExchange(ctx context.Context, acc *stream.Accumulator, input string) error {
	err := acc.Run(ctx, input)
	if errors.Is(err, stream.ErrRejected) {
		if initErr := acc.InitErr(); initErr != nil {
			return initErr
		}
	}
	return err
}

// newPrinter wraps to the terminal width when stdout is a terminal and
// word wrap is enabled.
func (a *App) newPrinter() *Printer {
	width := 0
	if a.Config.UI.WordWrap && IsStdoutTTY() {
		width = wrapWidth()
	}
	return NewPrinter(a.Out, width, a.styled())
}

// persist records the reply's sources in the library and autosaves the
// conversation. The answer is already on screen, so failures only warn.
func (a *App) persist(ctx context.Context, t *model.Transcript, entry model.Entry, provider llm.Provider) {
	if entry.HasSources() {
		lib, err := a.Library()
		if err == nil {
			err = lib.Record(ctx, t.ID(), entry)
		}
		if err != nil {
			a.Log.Warn("record sources", "err", err)
		}
	}

	if !a.Config.Storage.Autosave {
		return
	}
	store, err := a.Store()
	if err != nil {
		a.Log.Warn("open conversation store", "err", err)
		return
	}
	if _, err := store.SaveTranscript(t, provider.Name(), provider.Model()); err != nil {
		a.Log.Error("save conversation", "err", err)
		a.infof("%s conversation not saved: %v", WarningStyle.Render("Warning:"), err)
	}
}
