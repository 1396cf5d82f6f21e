// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
)

func newStore(t *testing.T, max int) *ConversationStore {
	t.Helper()
	store, err := NewConversationStore(filepath.Join(t.TempDir(), "conversations"), max)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

// exchange builds a transcript holding one completed, cited exchange.
func exchange(t *testing.T, question, answer string, sources ...model.WebSource) *model.Transcript {
	t.Helper()
	tr := model.NewTranscript()
	_, p, err := tr.Begin(question)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Append(answer); err != nil {
		t.Fatal(err)
	}
	if len(sources) > 0 {
		if err := p.SetSources(sources); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := p.Commit(); err != nil {
		t.Fatal(err)
	}
	return tr
}

func stored(id, question string, updated time.Time) *StoredConversation {
	return &StoredConversation{
		ID:        id,
		UpdatedAt: updated,
		Messages: []StoredMessage{
			{ID: "u", Role: model.RoleUser, Content: question},
			{ID: "m", Role: model.RoleModel, Content: "answer"},
		},
	}
}

// =============================================================================
// CONVERSATION STORE TESTS
// =============================================================================

func TestConversationStore_SaveTranscriptAndResume(t *testing.T) {
	store := newStore(t, 0)
	src := model.WebSource{URI: "https://ff.garena.com/news", Title: "Garena News"}
	tr := exchange(t, "Show me today’s Free Fire events.", "Booyah Day!", src)

	id, err := store.SaveTranscript(tr, "gemini", "gemini-2.5-flash")
	if err != nil {
		t.Fatalf("SaveTranscript failed: %v", err)
	}
	if id != tr.ID() {
		t.Errorf("id = %q, want transcript id %q", id, tr.ID())
	}

	info, err := os.Stat(filepath.Join(store.BaseDir, id+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %o", info.Mode().Perm())
	}

	conv, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if conv.Version != SchemaVersion || conv.Provider != "gemini" || conv.Model != "gemini-2.5-flash" {
		t.Errorf("header = %+v", conv)
	}
	if conv.Summary != "Show me today’s Free Fire events." {
		t.Errorf("Summary = %q", conv.Summary)
	}

	resumed := conv.Transcript()
	if resumed.ID() != id {
		t.Errorf("resumed ID = %q", resumed.ID())
	}
	entries := resumed.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[1].Text != "Booyah Day!" || len(entries[1].Sources) != 1 || entries[1].Sources[0] != src {
		t.Errorf("model entry = %+v", entries[1])
	}
	if resumed.Streaming() {
		t.Error("resumed transcript must not be streaming")
	}
}

func TestFromTranscript_SkipsStreamingEntry(t *testing.T) {
	tr := exchange(t, "q1", "a1")
	_, p, err := tr.Begin("q2")
	if err != nil {
		t.Fatal(err)
	}
	_ = p.Append("partial")

	conv := FromTranscript(tr, "ollama", "llama3.2")
	if len(conv.Messages) != 3 {
		t.Fatalf("messages = %d, want 3 (open reply excluded)", len(conv.Messages))
	}
	if conv.Messages[2].Content != "q2" {
		t.Errorf("last saved message = %+v", conv.Messages[2])
	}
}

func TestConversationStore_SaveRejects(t *testing.T) {
	store := newStore(t, 0)

	if _, err := store.SaveTranscript(model.NewTranscript(), "", ""); !errors.Is(err, ErrEmptyConversation) {
		t.Errorf("empty save error = %v", err)
	}
	if _, err := store.Save(stored("../escape", "q", time.Now())); !errors.Is(err, ErrInvalidID) {
		t.Errorf("traversal save error = %v", err)
	}
}

func TestConversationStore_LoadNotFound(t *testing.T) {
	store := newStore(t, 0)
	for _, id := range []string{"conv_missing", "../etc/passwd", ""} {
		if _, err := store.Load(id); !errors.Is(err, ErrConversationNotFound) {
			t.Errorf("Load(%q) error = %v", id, err)
		}
	}
}

func TestConversationStore_ListAndResolve(t *testing.T) {
	store := newStore(t, 0)
	now := time.Now()
	for i, id := range []string{"conv_aaa111", "conv_aab222", "conv_bbb333"} {
		if _, err := store.Save(stored(id, "question "+id, now.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	// A corrupt file is skipped.
	os.WriteFile(filepath.Join(store.BaseDir, "conv_bad.json"), []byte("{"), 0o600)

	metas, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 3 || metas[0].ID != "conv_bbb333" || metas[2].ID != "conv_aaa111" {
		t.Fatalf("List() order = %+v", metas)
	}
	if metas[0].MessageCount != 2 || metas[0].Preview != "question conv_bbb333" {
		t.Errorf("meta = %+v", metas[0])
	}

	tests := []struct {
		ref  string
		want string
		err  error
	}{
		{"1", "conv_bbb333", nil},
		{"3", "conv_aaa111", nil},
		{"4", "", ErrConversationNotFound},
		{"conv_aab222", "conv_aab222", nil},
		{"bbb", "conv_bbb333", nil},
		{"aa", "", ErrAmbiguousID},
		{"zzz", "", ErrConversationNotFound},
	}
	for _, tc := range tests {
		conv, err := store.Resolve(tc.ref)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("Resolve(%q) error = %v, want %v", tc.ref, err, tc.err)
			}
			continue
		}
		if err != nil || conv.ID != tc.want {
			t.Errorf("Resolve(%q) = %v, %v; want %s", tc.ref, conv, err, tc.want)
		}
	}
}

func TestConversationStore_Search(t *testing.T) {
	store := newStore(t, 0)
	a := exchange(t, "evo gun price?", "It costs diamonds.", model.WebSource{URI: "https://x", Title: "Faded Wheel Guide"})
	b := exchange(t, "sensitivity for 𝐆𝐡𝐨𝐬𝐭", "Try 100 general.")
	for _, tr := range []*model.Transcript{a, b} {
		if _, err := store.SaveTranscript(tr, "gemini", "m"); err != nil {
			t.Fatal(err)
		}
	}

	tests := map[string][]string{
		"EVO":         {a.ID()},
		"diamonds":    {a.ID()},
		"faded wheel": {a.ID()},
		"general":     {b.ID()},
		"ghost":       {b.ID()},
		"ＥＶＯ":         {a.ID()},
		"nothing":     {},
	}
	for q, want := range tests {
		got, err := store.Search(q)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(want) {
			t.Errorf("Search(%q) = %d results, want %d", q, len(got), len(want))
			continue
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Errorf("Search(%q)[%d] = %s", q, i, got[i].ID)
			}
		}
	}

	all, _ := store.Search("")
	if len(all) != 2 {
		t.Errorf("empty query = %d results", len(all))
	}
}

func TestConversationStore_EnforceLimit(t *testing.T) {
	store := newStore(t, 2)
	now := time.Now()
	for i, id := range []string{"conv_1", "conv_2", "conv_3"} {
		if _, err := store.Save(stored(id, "q", now.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}

	metas, _ := store.List()
	if len(metas) != 2 {
		t.Fatalf("kept %d conversations, want 2", len(metas))
	}
	if _, err := store.Load("conv_1"); !errors.Is(err, ErrConversationNotFound) {
		t.Error("oldest conversation should have been pruned")
	}

	// Resaving an old conversation with an old timestamp keeps it.
	if _, err := store.Save(stored("conv_0", "q", now.Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load("conv_0"); err != nil {
		t.Errorf("just-saved conversation pruned: %v", err)
	}
}

func TestConversationStore_Delete(t *testing.T) {
	store := newStore(t, 0)
	if _, err := store.Save(stored("conv_del", "q", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("conv_del"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete("conv_del"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("second Delete error = %v", err)
	}
}

func TestStoredConversation_PreviewAndSummary(t *testing.T) {
	conv := stored("conv_x", "  line one\nline two  ", time.Now())
	if got := conv.Preview(80); got != "line one line two" {
		t.Errorf("Preview() = %q", got)
	}
	if got := conv.Preview(8); !strings.HasSuffix(got, "...") || len(got) > 8 {
		t.Errorf("Preview(8) = %q", got)
	}

	empty := &StoredConversation{Messages: []StoredMessage{{Role: model.RoleModel, Content: "hi"}}}
	if empty.Title() != "New conversation" {
		t.Errorf("summary fallback = %q", empty.Title())
	}
}

func TestConversationError_Is(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), ErrConversationNotFound)
	if !errors.Is(wrapped, ErrConversationNotFound) {
		t.Error("wrapped error should match")
	}
	if errors.Is(ErrEmptyConversation, ErrConversationNotFound) {
		t.Error("different messages must not match")
	}
}
