// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
)

// =============================================================================
// STATE
// =============================================================================

// State is the exchange state of an Accumulator.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateFinalizing
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// =============================================================================
// EVENTS
// =============================================================================

// Event is produced by the pump goroutine and consumed by Apply.
type Event interface {
	exchange() uint64
}

// Fragment carries the next piece of reply text.
type Fragment struct {
	Seq  uint64
	Text string
}

// End reports that the provider stream is exhausted. History is the session
// history read right after; HistoryErr is set if reading it failed.
type End struct {
	Seq        uint64
	History    []llm.Content
	HistoryErr error
}

// Failure reports that the exchange failed before End.
type Failure struct {
	Seq uint64
	Err *Error
}

func (e *Fragment) exchange() uint64 { return e.Seq }
func (e *End) exchange() uint64      { return e.Seq }
func (e *Failure) exchange() uint64  { return e.Seq }

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrRejected is returned by Run when the submission was not accepted.
	ErrRejected = errors.New("submission rejected")

	// ErrBusy is returned when an operation needs an idle accumulator.
	ErrBusy = errors.New("a reply is still streaming")

	// ErrClosed is returned when the accumulator has been closed.
	ErrClosed = errors.New("accumulator is closed")

	// ErrCancelled is the cause recorded by Cancel.
	ErrCancelled = errors.New("request cancelled")

	// ErrIdleTimeout is the cause recorded when no chunk arrives in time.
	ErrIdleTimeout = errors.New("no response from provider")
)

// Error is a failed exchange, preserving how much text had been received
// before the failure.
type Error struct {
	Partial int // bytes received before the failure
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Partial > 0 {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", e.Partial, e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user for this failure.
func (e *Error) Message() string {
	return "Error: " + e.Err.Error()
}

// newError builds an *Error, preferring the context's cancellation cause
// over the transport error it produced.
func newError(ctx context.Context, err error, partial int) *Error {
	if ctx.Err() != nil {
		if cause := context.Cause(ctx); cause != nil {
			err = cause
		}
	}
	if errors.Is(err, context.Canceled) {
		err = ErrCancelled
	}
	return &Error{Partial: partial, Err: err}
}
