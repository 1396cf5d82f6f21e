// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"
)

// Command names. Front ends dispatch on these.
const (
	Help    = "/help"
	New     = "/new"
	Save    = "/save"
	Resume  = "/resume"
	Sources = "/sources"
	Export  = "/export"
	Quit    = "/quit"
)

// ExportFormats are the accepted /export arguments.
var ExportFormats = []string{"md", "html", "json"}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command describes a slash command.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/export [md|html|json]")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string

	// TakesRest means the whole argument string is one free-text argument.
	TakesRest bool
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString       ArgType = iota // Free-form string
	ArgTypeConversation                // Saved conversation ID
	ArgTypeEnum                        // One of predefined values
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias, case-insensitively.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// HelpText renders the command list as markdown, grouped by category.
func (r *Registry) HelpText() string {
	groups := r.ByCategory()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "## %s\n\n", name)
		sb.WriteString("| Command | Description |\n|---|---|\n")
		for _, cmd := range groups[name] {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			desc := cmd.Description
			if len(cmd.Aliases) > 0 {
				desc += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			fmt.Fprintf(&sb, "| `%s` | %s |\n", usage, desc)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        Help,
		Aliases:     []string{"/h", "/?"},
		Description: "Show keys and commands",
		Category:    "General",
	})

	r.Register(&Command{
		Name:        Quit,
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit ghost",
		Category:    "General",
	})

	r.Register(&Command{
		Name:        New,
		Aliases:     []string{"/n", "/clear"},
		Description: "Start a new conversation",
		Category:    "Conversation",
	})

	r.Register(&Command{
		Name:        Save,
		Aliases:     []string{"/s"},
		Description: "Save the conversation now",
		Category:    "Conversation",
	})

	r.Register(&Command{
		Name:        Resume,
		Aliases:     []string{"/load", "/r"},
		Description: "Continue a saved conversation",
		Usage:       "/resume <id|number>",
		Args: []ArgDef{
			{Name: "id", Required: true, Type: ArgTypeConversation, Description: "conversation ID, prefix or list number"},
		},
		Category: "Conversation",
	})

	r.Register(&Command{
		Name:        Export,
		Aliases:     []string{"/e"},
		Description: "Export the conversation",
		Usage:       "/export [md|html|json]",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: ExportFormats, Description: "output format"},
		},
		Category: "Conversation",
	})

	r.Register(&Command{
		Name:        Sources,
		Aliases:     []string{"/src"},
		Description: "Search cited web sources",
		Usage:       "/sources [query]",
		Args: []ArgDef{
			{Name: "query", Type: ArgTypeString, Description: "words to match in titles and URLs"},
		},
		TakesRest: true,
		Category:  "Sources",
	})
}
