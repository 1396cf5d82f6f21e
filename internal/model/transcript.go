// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Errors returned by transcript mutations.
var (
	// ErrResponseOpen is returned when a new turn is started while a model
	// response is still open.
	ErrResponseOpen = errors.New("model: a response is already open")

	// ErrResponseClosed is returned when a pending handle is used after it
	// was committed or discarded.
	ErrResponseClosed = errors.New("model: response is closed")

	// ErrSourcesAttached is returned when sources are attached twice.
	ErrSourcesAttached = errors.New("model: sources already attached")
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered message log of one conversation.
type Transcript struct {
	mu        sync.RWMutex
	id        string
	createdAt time.Time
	updatedAt time.Time
	entries   []Entry
	open      *Pending
}

// NewTranscript creates an empty transcript with a generated ID.
func NewTranscript() *Transcript {
	now := time.Now()
	return &Transcript{
		id:        "conv_" + uuid.New().String(),
		createdAt: now,
		updatedAt: now,
		entries:   make([]Entry, 0),
	}
}

// NewTranscriptFrom rebuilds a transcript from saved entries. All entries are
// frozen.
func NewTranscriptFrom(id string, createdAt time.Time, entries []Entry) *Transcript {
	t := NewTranscript()
	if id != "" {
		t.id = id
	}
	if !createdAt.IsZero() {
		t.createdAt = createdAt
	}
	for _, e := range entries {
		t.entries = append(t.entries, e.clone())
	}
	return t
}

// ID returns the conversation identifier.
func (t *Transcript) ID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id
}

// CreatedAt returns when the conversation was started.
func (t *Transcript) CreatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.createdAt
}

// UpdatedAt returns the time of the last mutation.
func (t *Transcript) UpdatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updatedAt
}

// Len returns the number of entries, including an open one.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// IsEmpty returns true if there are no entries.
func (t *Transcript) IsEmpty() bool {
	return t.Len() == 0
}

// Entries returns a snapshot of all entries. The open entry, if any, is
// included with the text received so far.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.clone()
	}
	return out
}

// Last returns the tail entry.
func (t *Transcript) Last() (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1].clone(), true
}

// Streaming returns true while the tail entry is open.
func (t *Transcript) Streaming() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.open != nil
}

// OpenID returns the ID of the open entry, or "" when none is open.
func (t *Transcript) OpenID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.open == nil {
		return ""
	}
	return t.open.id
}

// AppendUser appends a frozen USER entry.
func (t *Transcript) AppendUser(text string) (Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open != nil {
		return Entry{}, ErrResponseOpen
	}
	e := NewEntry(RoleUser, text)
	t.entries = append(t.entries, e)
	t.updatedAt = e.CreatedAt
	return e.clone(), nil
}

// OpenModel appends an empty MODEL entry and returns its write handle.
func (t *Transcript) OpenModel() (*Pending, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.openModelLocked()
}

// Begin appends the USER entry and the empty MODEL entry in one step, so no
// reader ever sees one without the other.
func (t *Transcript) Begin(text string) (Entry, *Pending, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open != nil {
		return Entry{}, nil, ErrResponseOpen
	}
	user := NewEntry(RoleUser, text)
	t.entries = append(t.entries, user)
	p, err := t.openModelLocked()
	if err != nil {
		return Entry{}, nil, err
	}
	return user.clone(), p, nil
}

func (t *Transcript) openModelLocked() (*Pending, error) {
	if t.open != nil {
		return nil, ErrResponseOpen
	}
	e := NewEntry(RoleModel, "")
	t.entries = append(t.entries, e)
	t.updatedAt = e.CreatedAt
	t.open = &Pending{t: t, id: e.ID}
	return t.open, nil
}

// Reset clears the transcript and gives it a new ID.
func (t *Transcript) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open != nil {
		return ErrResponseOpen
	}
	now := time.Now()
	t.id = "conv_" + uuid.New().String()
	t.entries = make([]Entry, 0)
	t.createdAt = now
	t.updatedAt = now
	return nil
}

// =============================================================================
// PENDING RESPONSE
// =============================================================================

// Pending is the exclusive write handle for the open MODEL entry.
// It is not safe for use by more than one goroutine.
type Pending struct {
	t          *Transcript
	id         string
	buf        strings.Builder
	sourcesSet bool
	closed     bool
}

// ID returns the ID of the entry being written.
func (p *Pending) ID() string {
	return p.id
}

// Text returns the text received so far.
func (p *Pending) Text() string {
	return p.buf.String()
}

// Len returns the number of bytes received so far.
func (p *Pending) Len() int {
	return p.buf.Len()
}

// Append extends the entry with a fragment.
func (p *Pending) Append(fragment string) error {
	if p.closed {
		return ErrResponseClosed
	}
	if fragment == "" {
		return nil
	}
	p.buf.WriteString(fragment)

	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	p.t.entries[len(p.t.entries)-1].Text = p.buf.String()
	return nil
}

// SetSources attaches web sources. It may be called at most once.
func (p *Pending) SetSources(sources []WebSource) error {
	if p.closed {
		return ErrResponseClosed
	}
	if p.sourcesSet {
		return ErrSourcesAttached
	}
	p.sourcesSet = true
	if len(sources) == 0 {
		return nil
	}
	src := make([]WebSource, len(sources))
	copy(src, sources)

	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	p.t.entries[len(p.t.entries)-1].Sources = src
	return nil
}

// Commit freezes the entry and returns its final value.
func (p *Pending) Commit() (Entry, error) {
	if p.closed {
		return Entry{}, ErrResponseClosed
	}
	p.closed = true

	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	p.t.open = nil
	p.t.updatedAt = time.Now()
	return p.t.entries[len(p.t.entries)-1].clone(), nil
}

// Discard removes the entry from the transcript. Entries before it are kept.
func (p *Pending) Discard() error {
	if p.closed {
		return ErrResponseClosed
	}
	p.closed = true

	p.t.mu.Lock()
	defer p.t.mu.Unlock()
	p.t.entries = p.t.entries[:len(p.t.entries)-1]
	p.t.open = nil
	p.t.updatedAt = time.Now()
	return nil
}
