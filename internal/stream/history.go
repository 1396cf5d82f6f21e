// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
)

// HistoryFromEntries converts frozen transcript entries into provider
// history so a saved conversation can be resumed. Only complete exchanges
// are kept: a USER entry is included when the next entry is a non-empty
// MODEL reply.
func HistoryFromEntries(entries []model.Entry) []llm.Content {
	out := make([]llm.Content, 0, len(entries))
	for i := 0; i+1 < len(entries); i++ {
		user, reply := entries[i], entries[i+1]
		if user.Role != model.RoleUser || reply.Role != model.RoleModel || reply.Text == "" {
			continue
		}
		out = append(out, llm.UserContent(user.Text), llm.ModelContent(reply.Text, nil))
		i++
	}
	return out
}
