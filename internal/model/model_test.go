// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleModel, "Ghost"},
		{Role("other"), "other"},
	}

	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tc.role, got, tc.want)
		}
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_BeginAppendsBothEntries(t *testing.T) {
	tr := NewTranscript()

	user, p, err := tr.Begin("hi")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if user.Role != RoleUser || user.Text != "hi" {
		t.Errorf("user entry = %+v", user)
	}

	entries := tr.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[1].Role != RoleModel || entries[1].Text != "" || entries[1].HasSources() {
		t.Errorf("placeholder = %+v, want empty model entry", entries[1])
	}
	if entries[1].ID != p.ID() {
		t.Errorf("pending ID = %q, want %q", p.ID(), entries[1].ID)
	}
	if !tr.Streaming() {
		t.Error("Streaming() = false, want true")
	}
}

func TestTranscript_FragmentsAppendInOrder(t *testing.T) {
	tr := NewTranscript()
	_, p, err := tr.Begin("q")
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range []string{"Hel", "lo, ", "world"} {
		if err := p.Append(f); err != nil {
			t.Fatalf("Append(%q) error = %v", f, err)
		}
	}

	last, _ := tr.Last()
	if last.Text != "Hello, world" {
		t.Errorf("tail text = %q, want %q", last.Text, "Hello, world")
	}

	e, err := p.Commit()
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if e.Text != "Hello, world" {
		t.Errorf("committed text = %q", e.Text)
	}
	if tr.Streaming() {
		t.Error("Streaming() = true after commit")
	}
	if err := p.Append("more"); !errors.Is(err, ErrResponseClosed) {
		t.Errorf("Append after commit error = %v, want ErrResponseClosed", err)
	}
}

func TestTranscript_DiscardKeepsUserEntry(t *testing.T) {
	tr := NewTranscript()
	_, p, _ := tr.Begin("question")
	_ = p.Append("partial answ")

	if err := p.Discard(); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}

	entries := tr.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].Text != "question" {
		t.Errorf("remaining entry = %+v", entries[0])
	}
	if tr.Streaming() {
		t.Error("Streaming() = true after discard")
	}
}

func TestTranscript_RejectsSecondOpenResponse(t *testing.T) {
	tr := NewTranscript()
	if _, _, err := tr.Begin("a"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := tr.Begin("b"); !errors.Is(err, ErrResponseOpen) {
		t.Errorf("Begin() error = %v, want ErrResponseOpen", err)
	}
	if _, err := tr.AppendUser("c"); !errors.Is(err, ErrResponseOpen) {
		t.Errorf("AppendUser() error = %v, want ErrResponseOpen", err)
	}
	if _, err := tr.OpenModel(); !errors.Is(err, ErrResponseOpen) {
		t.Errorf("OpenModel() error = %v, want ErrResponseOpen", err)
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
}

func TestPending_SourcesAttachOnce(t *testing.T) {
	tr := NewTranscript()
	_, p, _ := tr.Begin("q")

	src := []WebSource{{URI: "https://a", Title: "A"}}
	if err := p.SetSources(src); err != nil {
		t.Fatalf("SetSources() error = %v", err)
	}
	if err := p.SetSources(src); !errors.Is(err, ErrSourcesAttached) {
		t.Errorf("second SetSources() error = %v, want ErrSourcesAttached", err)
	}

	src[0].Title = "mutated"
	e, _ := p.Commit()
	if len(e.Sources) != 1 || e.Sources[0].Title != "A" {
		t.Errorf("sources = %+v, want caller slice copied", e.Sources)
	}
}

func TestPending_EmptySourcesLeaveEntryBare(t *testing.T) {
	tr := NewTranscript()
	_, p, _ := tr.Begin("q")
	_ = p.SetSources(nil)
	e, _ := p.Commit()
	if e.Sources != nil {
		t.Errorf("Sources = %+v, want nil", e.Sources)
	}
}

func TestTranscript_SnapshotsAreIndependent(t *testing.T) {
	tr := NewTranscript()
	_, p, _ := tr.Begin("q")
	_ = p.Append("one")

	snap := tr.Entries()
	_ = p.Append(" two")

	if snap[1].Text != "one" {
		t.Errorf("snapshot text = %q, want %q", snap[1].Text, "one")
	}
}

func TestTranscript_ConcurrentReaders(t *testing.T) {
	tr := NewTranscript()
	_, p, _ := tr.Begin("q")

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if last, ok := tr.Last(); ok && strings.Trim(last.Text, "x") != "" {
					t.Errorf("unexpected tail text %q", last.Text)
					return
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		_ = p.Append("x")
	}
	close(stop)
	wg.Wait()

	if got := p.Len(); got != 500 {
		t.Errorf("Len() = %d, want 500", got)
	}
}

func TestNewTranscriptFrom(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	entries := []Entry{
		NewEntry(RoleUser, "q"),
		{ID: "m1", Role: RoleModel, Text: "a", Sources: []WebSource{{URI: "u", Title: "t"}}},
	}

	tr := NewTranscriptFrom("conv_fixed", created, entries)
	entries[1].Sources[0].Title = "changed"

	if tr.ID() != "conv_fixed" {
		t.Errorf("ID() = %q", tr.ID())
	}
	if !tr.CreatedAt().Equal(created) {
		t.Errorf("CreatedAt() = %v", tr.CreatedAt())
	}
	got := tr.Entries()
	if len(got) != 2 || got[1].Sources[0].Title != "t" {
		t.Errorf("entries = %+v", got)
	}
	if tr.Streaming() {
		t.Error("restored transcript should not be streaming")
	}
}

func TestTranscript_Reset(t *testing.T) {
	tr := NewTranscript()
	oldID := tr.ID()
	_, p, _ := tr.Begin("q")

	if err := tr.Reset(); !errors.Is(err, ErrResponseOpen) {
		t.Errorf("Reset() while open error = %v", err)
	}
	_, _ = p.Commit()
	if err := tr.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !tr.IsEmpty() {
		t.Error("transcript not empty after reset")
	}
	if tr.ID() == oldID {
		t.Error("Reset() should assign a new ID")
	}
}
