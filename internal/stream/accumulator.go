// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/citation"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
)

// DefaultIdleTimeout is how long the pump waits for the next chunk.
const DefaultIdleTimeout = 90 * time.Second

// eventBuffer bounds how far the pump can run ahead of Apply.
const eventBuffer = 64

// Options configures an Accumulator.
type Options struct {
	// IdleTimeout fails the exchange when no chunk arrives for this long.
	// Zero disables the timeout.
	IdleTimeout time.Duration

	// OnFragment is called by Apply after each fragment is appended.
	OnFragment func(text string)

	// OnComplete is called by Apply with the frozen MODEL entry.
	OnComplete func(entry model.Entry)

	// Logger receives exchange lifecycle records. Defaults to slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator owns the exchange between a transcript and a provider
// session. Submit, Apply, Run and the accessors must be called from a single
// goroutine; Cancel and Close may be called from any goroutine.
type Accumulator struct {
	transcript *model.Transcript
	session    llm.Session
	opts       Options
	log        *slog.Logger

	state   State
	pending *model.Pending
	seq     uint64
	events  chan Event
	started time.Time
	message string
	lastErr *Error
	initErr error

	mu     sync.Mutex
	cancel context.CancelCauseFunc

	quit      chan struct{}
	closeOnce sync.Once
}

// New creates an Accumulator and opens a provider session. If the session
// cannot be created the accumulator is still returned; it rejects every
// submission and Message reports the initialization failure.
func New(transcript *model.Transcript, provider llm.Provider, cfg llm.SessionConfig, opts Options) *Accumulator {
	a := newAccumulator(transcript, opts)
	a.startSession(provider, cfg)
	return a
}

// NewWithSession creates an Accumulator around an existing session.
func NewWithSession(transcript *model.Transcript, session llm.Session, opts Options) *Accumulator {
	a := newAccumulator(transcript, opts)
	a.session = session
	return a
}

func newAccumulator(transcript *model.Transcript, opts Options) *Accumulator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Accumulator{
		transcript: transcript,
		opts:       opts,
		log:        logger.With("component", "stream"),
		quit:       make(chan struct{}),
	}
}

func (a *Accumulator) startSession(provider llm.Provider, cfg llm.SessionConfig) {
	a.session = nil
	a.initErr = nil
	a.message = ""

	if provider == nil {
		a.initErr = &llm.InitError{Err: errors.New("no provider configured")}
	} else {
		sess, err := provider.NewSession(cfg)
		if err != nil {
			a.initErr = err
		} else {
			a.session = sess
		}
	}

	if a.initErr != nil {
		a.message = "Initialization failed: " + a.initErr.Error()
		a.log.Error("session initialization failed", "err", a.initErr)
	}
}

// Restart replaces the session, e.g. after /new or a configuration reload.
func (a *Accumulator) Restart(provider llm.Provider, cfg llm.SessionConfig) error {
	if a.Closed() {
		return ErrClosed
	}
	if a.Busy() {
		return ErrBusy
	}
	a.startSession(provider, cfg)
	a.state = StateIdle
	a.lastErr = nil
	return a.initErr
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Transcript returns the transcript the accumulator writes to.
func (a *Accumulator) Transcript() *model.Transcript {
	return a.transcript
}

// State returns the current exchange state.
func (a *Accumulator) State() State {
	return a.state
}

// Busy returns true while an exchange is in flight.
func (a *Accumulator) Busy() bool {
	return a.state == StateStreaming || a.state == StateFinalizing
}

// Ready returns true if the session was initialized.
func (a *Accumulator) Ready() bool {
	return a.session != nil
}

// InitErr returns the session initialization error, if any.
func (a *Accumulator) InitErr() error {
	return a.initErr
}

// Message returns the user-facing error message, or "" when there is none.
func (a *Accumulator) Message() string {
	return a.message
}

// LastError returns the failure of the most recent exchange, if it failed.
func (a *Accumulator) LastError() *Error {
	return a.lastErr
}

// Events returns the event channel of the current exchange. It is closed
// after the pump has sent its final event.
func (a *Accumulator) Events() <-chan Event {
	return a.events
}

// =============================================================================
// SUBMIT / APPLY
// =============================================================================

// Submit starts an exchange. It returns false without side effects if the
// input is blank, an exchange is in flight, or the session failed to
// initialize, or the accumulator is closed.
func (a *Accumulator) Submit(ctx context.Context, input string) bool {
	if strings.TrimSpace(input) == "" || a.Busy() || a.session == nil || a.Closed() {
		return false
	}

	_, pending, err := a.transcript.Begin(input)
	if err != nil {
		a.log.Warn("transcript rejected submission", "err", err)
		return false
	}

	a.seq++
	a.pending = pending
	a.state = StateStreaming
	a.message = ""
	a.lastErr = nil
	a.started = time.Now()

	ctx, cancel := context.WithCancelCause(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	events := make(chan Event, eventBuffer)
	a.events = events

	a.log.Info("exchange started", "exchange", a.seq, "chars", len(input))
	go a.pump(ctx, cancel, a.session, a.seq, input, events)
	return true
}

// Apply applies one event to the transcript. It returns true when the event
// ended the exchange. Events from earlier exchanges are ignored.
func (a *Accumulator) Apply(ev Event) bool {
	if ev == nil || ev.exchange() != a.seq || a.pending == nil {
		return false
	}

	switch ev := ev.(type) {
	case *Fragment:
		if a.state != StateStreaming {
			return false
		}
		if a.pending.Len() == 0 {
			a.log.Debug("first fragment", "exchange", a.seq, "ttft", time.Since(a.started))
		}
		if err := a.pending.Append(ev.Text); err != nil {
			a.fail(&Error{Partial: a.pending.Len(), Err: err})
			return true
		}
		if a.opts.OnFragment != nil {
			a.opts.OnFragment(ev.Text)
		}
		return false

	case *End:
		a.state = StateFinalizing
		if ev.HistoryErr != nil {
			a.fail(&Error{Partial: a.pending.Len(), Err: fmt.Errorf("read history: %w", ev.HistoryErr)})
			return true
		}
		a.finalize(citation.Sources(ev.History))
		return true

	case *Failure:
		a.fail(ev.Err)
		return true
	}
	return false
}

// Run submits input and applies events until the exchange ends. It returns
// ErrRejected if the submission was not accepted and the exchange's *Error
// if it failed.
func (a *Accumulator) Run(ctx context.Context, input string) error {
	if !a.Submit(ctx, input) {
		return ErrRejected
	}
	for ev := range a.events {
		if a.Apply(ev) {
			break
		}
	}
	if a.lastErr != nil {
		return a.lastErr
	}
	return nil
}

// Cancel aborts the exchange in flight. The pump reports it as a failure,
// which rolls the open entry back.
func (a *Accumulator) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel(ErrCancelled)
	}
}

// Close cancels any exchange and stops the pump from blocking on sends.
// A closed accumulator accepts no further submissions or restarts.
func (a *Accumulator) Close() {
	a.Cancel()
	a.closeOnce.Do(func() { close(a.quit) })
}

// Closed reports whether Close has been called.
func (a *Accumulator) Closed() bool {
	select {
	case <-a.quit:
		return true
	default:
		return false
	}
}

func (a *Accumulator) finalize(sources []model.WebSource) {
	if len(sources) > 0 {
		if err := a.pending.SetSources(sources); err != nil {
			a.log.Warn("attach sources", "err", err)
		}
	}
	entry, err := a.pending.Commit()
	a.pending = nil
	a.state = StateIdle
	a.releaseCancel()
	if err != nil {
		a.log.Error("commit reply", "err", err)
		return
	}

	a.log.Info("exchange completed",
		"exchange", a.seq,
		"chars", len(entry.Text),
		"sources", len(entry.Sources),
		"elapsed", time.Since(a.started))

	if a.opts.OnComplete != nil {
		a.opts.OnComplete(entry)
	}
}

func (a *Accumulator) fail(err *Error) {
	if a.pending != nil {
		if derr := a.pending.Discard(); derr != nil {
			a.log.Error("discard reply", "err", derr)
		}
	}
	a.pending = nil
	a.state = StateFailed
	a.lastErr = err
	a.message = err.Message()
	a.releaseCancel()

	a.log.Warn("exchange rolled back", "exchange", a.seq, "partial", err.Partial, "err", err.Err)
}

func (a *Accumulator) releaseCancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel(nil)
		a.cancel = nil
	}
}

// =============================================================================
// PUMP
// =============================================================================

// pump opens the provider stream and forwards its chunks. It owns the
// stream and closes both the stream and events when done.
func (a *Accumulator) pump(ctx context.Context, cancel context.CancelCauseFunc, session llm.Session, seq uint64, input string, events chan<- Event) {
	defer close(events)

	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-a.quit:
			return false
		}
	}

	var idle *time.Timer
	if a.opts.IdleTimeout > 0 {
		idle = time.AfterFunc(a.opts.IdleTimeout, func() { cancel(ErrIdleTimeout) })
		defer idle.Stop()
	}

	s, err := session.SendStream(ctx, input)
	if err != nil {
		send(&Failure{Seq: seq, Err: newError(ctx, err, 0)})
		return
	}
	defer s.Close()

	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			send(&Failure{Seq: seq, Err: newError(ctx, err, len(s.Text()))})
			return
		}
		if idle != nil {
			idle.Reset(a.opts.IdleTimeout)
		}
		if chunk.Text == "" {
			continue
		}
		if !send(&Fragment{Seq: seq, Text: chunk.Text}) {
			return
		}
	}

	// A cancel that raced with the last chunk still rolls back.
	if ctx.Err() != nil {
		send(&Failure{Seq: seq, Err: newError(ctx, ctx.Err(), len(s.Text()))})
		return
	}

	history, err := session.History()
	send(&End{Seq: seq, History: history, HistoryErr: err})
}
