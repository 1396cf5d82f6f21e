// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/util"
)

// Completion is one completion candidate.
type Completion struct {
	// Value replaces the word being completed.
	Value string

	// Display is the text shown in a completion list.
	Display string

	Description string
	Score       int
}

// ConversationInfo describes a saved conversation for completion.
type ConversationInfo struct {
	ID      string
	Summary string
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// ConversationsFn returns saved conversations, newest first.
	ConversationsFn func() []ConversationInfo
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the word being typed at the end of input.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(strings.TrimLeft(input, " "), "/") {
		return nil
	}

	parts := splitCommandLine(input)
	endsWithSpace := strings.HasSuffix(input, " ")

	if len(parts) == 1 && !endsWithSpace {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := ""
	if endsWithSpace {
		argIndex++
	} else {
		partial = parts[len(parts)-1]
	}

	return c.completeArg(cmd, argIndex, partial)
}

// CompleteLine returns whole input lines, the form line editors expect.
func (c *Completer) CompleteLine(line string) []string {
	completions := c.Complete(line)
	if len(completions) == 0 {
		return nil
	}

	head := ""
	if i := strings.LastIndex(line, " "); i >= 0 {
		head = line[:i+1]
	}

	out := make([]string, 0, len(completions))
	for _, comp := range completions {
		out = append(out, head+comp.Value)
	}
	return out
}

// completeCommands returns completions for command names.
func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}

		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}

		for _, alias := range cmd.Aliases {
			if partial != "/" && strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// completeArg returns completions for a command argument.
func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeEnum:
		return completeFromList(arg.Values, partial)
	case ArgTypeConversation:
		return c.completeConversations(partial)
	default:
		return nil
	}
}

// completeConversations keeps the store's order so the newest comes first.
func (c *Completer) completeConversations(partial string) []Completion {
	if c.ConversationsFn == nil {
		return nil
	}

	var completions []Completion
	for _, conv := range c.ConversationsFn() {
		if strings.HasPrefix(conv.ID, partial) || strings.HasPrefix(strings.TrimPrefix(conv.ID, "conv_"), partial) {
			completions = append(completions, Completion{
				Value:       conv.ID,
				Display:     conv.ID,
				Description: util.Preview(conv.Summary, 40),
			})
		}
	}
	return completions
}

func completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	lower := strings.ToLower(partial)
	for _, v := range values {
		if strings.HasPrefix(strings.ToLower(v), lower) {
			completions = append(completions, Completion{
				Value:   v,
				Display: v,
				Score:   calculateScore(v, partial),
			})
		}
	}
	sortCompletions(completions)
	return completions
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore ranks a prefix match. Exact matches win, then shorter values.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	if value == partial {
		return 200
	}
	return 150 - len(value)
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState holds the state for cycling through completions.
type CompletionState struct {
	// OriginalInput is the input completions were computed for.
	OriginalInput string

	Completions []Completion

	// Selected index (-1 for none)
	Selected int
}

// NewCompletionState creates a new completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the completions and selects the first.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
	if len(completions) == 0 {
		cs.Selected = -1
	}
}

// Visible reports whether there is anything to show.
func (cs *CompletionState) Visible() bool {
	return len(cs.Completions) > 0
}

// Next moves to the next completion.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves to the previous completion.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Accept returns the input with the selected completion applied, or the
// original input when there is none.
func (cs *CompletionState) Accept() string {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return cs.OriginalInput
	}
	head := ""
	if i := strings.LastIndex(cs.OriginalInput, " "); i >= 0 {
		head = cs.OriginalInput[:i+1]
	}
	return head + cs.Completions[cs.Selected].Value
}

// Clear clears the completion state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
}
