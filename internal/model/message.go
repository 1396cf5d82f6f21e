// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of an entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Ghost"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// =============================================================================
// WEB SOURCE
// =============================================================================

// WebSource is a web page cited by a model response. Two sources are the
// same source when their URIs are equal.
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// =============================================================================
// ENTRY TYPE
// =============================================================================

// Entry is a single turn in the transcript.
type Entry struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Text      string      `json:"text"`
	Sources   []WebSource `json:"sources,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewEntry creates an entry with a generated ID.
func NewEntry(role Role, text string) Entry {
	return Entry{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// HasSources returns true if the entry carries at least one web source.
func (e Entry) HasSources() bool {
	return len(e.Sources) > 0
}

// IsUser returns true if the entry was written by the user.
func (e Entry) IsUser() bool {
	return e.Role == RoleUser
}

// IsModel returns true if the entry was produced by the model.
func (e Entry) IsModel() bool {
	return e.Role == RoleModel
}

// clone returns a copy that shares no slices with e.
func (e Entry) clone() Entry {
	if e.Sources != nil {
		src := make([]WebSource, len(e.Sources))
		copy(src, e.Sources)
		e.Sources = src
	}
	return e
}
