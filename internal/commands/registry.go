// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"github.com/jeranaias/teamchat/internal/ingest"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/persona <name|number>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler executes the command
	Handler Handler

	// Hidden commands don't appear in help
	Hidden bool
}

// Handler executes a parsed command.
type Handler func(ctx *Context, in ParseResult) Result

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Rest takes the whole remainder of the line, spaces included.
	Rest bool

	// Exts limits file completion to these extensions. Directories are
	// always offered.
	Exts []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypePersona                // Persona name or number
	ArgTypeFile                   // File path
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands in registration order.
type Registry struct {
	order    []*Command
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry, replacing any with the same name.
func (r *Registry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd)
	} else {
		for i, c := range r.order {
			if c.Name == cmd.Name {
				r.order[i] = cmd
			}
		}
	}
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

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	out := make([]*Command, len(r.order))
	copy(out, r.order)
	return out
}

// HelpText renders the visible commands, one per line.
func (r *Registry) HelpText() string {
	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, cmd := range r.order {
		if cmd.Hidden {
			continue
		}
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		fmt.Fprintf(&sb, "  %-26s %s\n", usage, cmd.Description)
	}
	sb.WriteString("\nAnything else is sent to the active persona.")
	return sb.String()
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Handler:     handleHelp,
	})

	r.Register(&Command{
		Name:        "/persona",
		Aliases:     []string{"/p", "/switch"},
		Description: "Switch teammate (starts a new conversation)",
		Usage:       "/persona <name|number>",
		Args: []ArgDef{
			{Name: "persona", Type: ArgTypePersona, Rest: true, Description: "persona name, number or unique prefix"},
		},
		Handler: handlePersona,
	})

	r.Register(&Command{
		Name:        "/personas",
		Aliases:     []string{"/team"},
		Description: "List the team",
		Handler:     handlePersonas,
	})

	r.Register(&Command{
		Name:        "/edit",
		Description: "Replace the active persona's prompt",
		Usage:       "/edit <prompt>",
		Args: []ArgDef{
			{Name: "prompt", Type: ArgTypeString, Rest: true, Description: "new system prompt"},
		},
		Handler: handleEdit,
	})

	r.Register(&Command{
		Name:        "/upload",
		Aliases:     []string{"/load"},
		Description: "Load a .txt, .csv or .pdf as the knowledge base",
		Usage:       "/upload <path>",
		Args: []ArgDef{
			{Name: "path", Required: true, Type: ArgTypeFile, Rest: true, Exts: ingest.Extensions, Description: "document path"},
		},
		Handler: handleUpload,
	})

	r.Register(&Command{
		Name:        "/forget",
		Description: "Clear the knowledge base",
		Handler:     handleForget,
	})

	r.Register(&Command{
		Name:        "/export",
		Aliases:     []string{"/save"},
		Description: "Save the transcript (.md or .json)",
		Usage:       "/export [path]",
		Args: []ArgDef{
			{Name: "path", Type: ArgTypeFile, Rest: true, Description: "output file or directory"},
		},
		Handler: handleExport,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit teamchat",
		Handler:     handleQuit,
	})
}
