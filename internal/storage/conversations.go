// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/util"
)

// SchemaVersion is written to every saved conversation.
const SchemaVersion = 1

// =============================================================================
// STORED CONVERSATION TYPE
// =============================================================================

// StoredConversation represents a persisted conversation.
type StoredConversation struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Summary   string    `json:"summary"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []StoredMessage `json:"messages"`
}

// StoredMessage represents a persisted transcript entry.
type StoredMessage struct {
	ID        string            `json:"id"`
	Role      model.Role        `json:"role"`
	Content   string            `json:"content"`
	Sources   []model.WebSource `json:"sources,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	ID           string    `json:"id"`
	Summary      string    `json:"summary"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	SourceCount  int       `json:"source_count"`
	Preview      string    `json:"preview"`
}

// FromTranscript snapshots the frozen entries of t. An entry that is still
// streaming is left out.
func FromTranscript(t *model.Transcript, provider, modelName string) *StoredConversation {
	entries := t.Entries()
	if open := t.OpenID(); open != "" && len(entries) > 0 && entries[len(entries)-1].ID == open {
		entries = entries[:len(entries)-1]
	}

	conv := &StoredConversation{
		Version:   SchemaVersion,
		ID:        t.ID(),
		Provider:  provider,
		Model:     modelName,
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
		Messages:  make([]StoredMessage, 0, len(entries)),
	}
	for _, e := range entries {
		conv.Messages = append(conv.Messages, StoredMessage{
			ID:        e.ID,
			Role:      e.Role,
			Content:   e.Text,
			Sources:   e.Sources,
			Timestamp: e.CreatedAt,
		})
	}
	return conv
}

// Transcript rebuilds a transcript. Messages with an unknown role are
// skipped.
func (c *StoredConversation) Transcript() *model.Transcript {
	entries := make([]model.Entry, 0, len(c.Messages))
	for _, m := range c.Messages {
		if !m.Role.Valid() {
			continue
		}
		entries = append(entries, model.Entry{
			ID:        m.ID,
			Role:      m.Role,
			Text:      m.Content,
			Sources:   m.Sources,
			CreatedAt: m.Timestamp,
		})
	}
	return model.NewTranscriptFrom(c.ID, c.CreatedAt, entries)
}

// Preview returns the first user message as one line of at most width cells.
func (c *StoredConversation) Preview(width int) string {
	for _, msg := range c.Messages {
		if msg.Role == model.RoleUser && msg.Content != "" {
			return util.Preview(msg.Content, width)
		}
	}
	return ""
}

// SourceCount returns the number of sources attached across all messages.
func (c *StoredConversation) SourceCount() int {
	n := 0
	for _, msg := range c.Messages {
		n += len(msg.Sources)
	}
	return n
}

// meta builds the listing metadata.
func (c *StoredConversation) meta() ConversationMeta {
	return ConversationMeta{
		ID:           c.ID,
		Summary:      c.Summary,
		Provider:     c.Provider,
		Model:        c.Model,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MessageCount: len(c.Messages),
		SourceCount:  c.SourceCount(),
		Preview:      c.Preview(80),
	}
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore keeps one JSON file per conversation in BaseDir.
type ConversationStore struct {
	BaseDir string

	// MaxConversations limits stored conversations (0 = unlimited)
	MaxConversations int
}

// NewConversationStore creates a store rooted at baseDir.
func NewConversationStore(baseDir string, maxConversations int) (*ConversationStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating conversations directory: %w", err)
	}
	return &ConversationStore{
		BaseDir:          baseDir,
		MaxConversations: maxConversations,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a conversation and returns its ID. Empty conversations are
// not written.
func (s *ConversationStore) Save(conv *StoredConversation) (string, error) {
	if len(conv.Messages) == 0 {
		return "", ErrEmptyConversation
	}
	if !validID(conv.ID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, conv.ID)
	}

	conv.Version = SchemaVersion
	conv.Summary = conv.Title()
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = time.Now()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", err
	}
	if err := util.AtomicWriteFile(s.filePath(conv.ID), data, 0o600); err != nil {
		return "", err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit(conv.ID)
	}
	return conv.ID, nil
}

// SaveTranscript snapshots and saves t.
func (s *ConversationStore) SaveTranscript(t *model.Transcript, provider, modelName string) (string, error) {
	return s.Save(FromTranscript(t, provider, modelName))
}

// Title returns the summary, or one derived from the first user message
// when the conversation was never saved.
func (c *StoredConversation) Title() string {
	if c.Summary != "" {
		return c.Summary
	}
	if p := c.Preview(50); p != "" {
		return p
	}
	return "New conversation"
}

// enforceLimit removes the oldest conversations over the limit, never keep.
func (s *ConversationStore) enforceLimit(keep string) {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}

	// List is newest first; drop from the tail.
	excess := len(metas) - s.MaxConversations
	for i := len(metas) - 1; i >= 0 && excess > 0; i-- {
		if metas[i].ID == keep {
			continue
		}
		if s.Delete(metas[i].ID) == nil {
			excess--
		}
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by ID.
func (s *ConversationStore) Load(id string) (*StoredConversation, error) {
	if !validID(id) {
		return nil, ErrConversationNotFound
	}
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv StoredConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", id, err)
	}
	return &conv, nil
}

// Resolve finds a conversation by 1-based list position ("1" is the most
// recent), full ID, or unique ID prefix.
func (s *ConversationStore) Resolve(ref string) (*StoredConversation, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrConversationNotFound
	}

	metas, err := s.List()
	if err != nil {
		return nil, err
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(metas) {
			return nil, ErrConversationNotFound
		}
		return s.Load(metas[n-1].ID)
	}

	var match string
	for _, m := range metas {
		if m.ID == ref {
			return s.Load(m.ID)
		}
		if strings.HasPrefix(m.ID, ref) || strings.HasPrefix(m.ID, "conv_"+ref) {
			if match != "" {
				return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, ref)
			}
			match = m.ID
		}
	}
	if match == "" {
		return nil, ErrConversationNotFound
	}
	return s.Load(match)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved conversations (most recent first). Unreadable
// files are skipped.
func (s *ConversationStore) List() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ConversationMeta{}, nil
		}
		return nil, err
	}

	metas := make([]ConversationMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		metas = append(metas, conv.meta())
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search returns conversations whose summary, messages or source titles
// contain query, compared with util.Fold.
func (s *ConversationStore) Search(query string) ([]ConversationMeta, error) {
	all, err := s.List()
	if err != nil || query == "" {
		return all, err
	}

	query = util.Fold(query)
	results := make([]ConversationMeta, 0)
	for _, meta := range all {
		if strings.Contains(util.Fold(meta.Summary), query) {
			results = append(results, meta)
			continue
		}
		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		if conversationContains(conv, query) {
			results = append(results, meta)
		}
	}
	return results, nil
}

func conversationContains(conv *StoredConversation, foldedQuery string) bool {
	for _, msg := range conv.Messages {
		if strings.Contains(util.Fold(msg.Content), foldedQuery) {
			return true
		}
		for _, src := range msg.Sources {
			if strings.Contains(util.Fold(src.Title), foldedQuery) {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID.
func (s *ConversationStore) Delete(id string) error {
	if !validID(id) {
		return ErrConversationNotFound
	}
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// validID keeps IDs usable as file names inside BaseDir.
func validID(id string) bool {
	return idPattern.MatchString(id)
}

// filePath returns the file path for a conversation ID.
func (s *ConversationStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// ConversationError represents a conversation-related error.
// It implements the error interface and can be compared using errors.Is.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	var t *ConversationError
	if !errors.As(target, &t) {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrConversationNotFound is returned when a conversation doesn't exist.
	ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

	// ErrEmptyConversation is returned by Save for a conversation without messages.
	ErrEmptyConversation = &ConversationError{Message: "conversation is empty"}

	// ErrInvalidID is returned for IDs that are not safe file names.
	ErrInvalidID = &ConversationError{Message: "invalid conversation id"}

	// ErrAmbiguousID is returned by Resolve when a prefix matches several conversations.
	ErrAmbiguousID = &ConversationError{Message: "ambiguous conversation id"}
)
