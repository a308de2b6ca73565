// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completion is one tab-completion candidate.
type Completion struct {
	// Value replaces the partial token being completed
	Value string

	// Line is the whole input line with Value applied
	Line string

	Description string
	Score       int
}

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// PersonasFn returns persona names in team order.
	PersonasFn func() []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry, personasFn func() []string) *Completer {
	return &Completer{registry: registry, PersonasFn: personasFn}
}

// Complete returns completions for input, best first.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(strings.TrimLeft(input, " "), "/") {
		return nil
	}
	input = strings.TrimLeft(input, " ")

	name := ExtractCommandName(input)
	if name == input {
		return c.completeCommands(name)
	}

	cmd := c.registry.Get(name)
	if cmd == nil || len(cmd.Args) == 0 {
		return nil
	}

	partial := strings.TrimLeft(input[len(name):], " ")
	arg := cmd.Args[0]
	var out []Completion
	switch arg.Type {
	case ArgTypePersona:
		out = c.completePersonas(partial)
	case ArgTypeFile:
		out = completeFiles(partial, arg.Exts)
	default:
		return nil
	}
	for i := range out {
		out[i].Line = cmd.Name + " " + out[i].Value
	}
	return out
}

// Lines returns just the completed lines, for line editors.
func (c *Completer) Lines(input string) []string {
	comps := c.Complete(input)
	lines := make([]string, len(comps))
	for i, comp := range comps {
		lines[i] = comp.Line
	}
	return lines
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

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
				Line:        cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
			continue
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Line:        alias,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func (c *Completer) completePersonas(partial string) []Completion {
	if c.PersonasFn == nil {
		return nil
	}
	lower := strings.ToLower(partial)
	var completions []Completion
	for _, name := range c.PersonasFn() {
		if strings.HasPrefix(strings.ToLower(name), lower) {
			completions = append(completions, Completion{
				Value: name,
				Score: calculateScore(name, partial),
			})
		}
	}
	// Team order reads better than score order for names.
	return completions
}

// completeFiles lists directory entries matching partial. With exts set,
// only directories and files with those extensions are offered.
func completeFiles(partial string, exts []string) []Completion {
	dir := filepath.Dir(partial)
	prefix := filepath.Base(partial)
	if partial == "" || strings.HasSuffix(partial, string(os.PathSeparator)) {
		dir = partial
		if dir == "" {
			dir = "."
		}
		prefix = ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	lowerPrefix := strings.ToLower(prefix)
	var completions []Completion
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !entry.IsDir() && !hasExt(name, exts) {
			continue
		}

		value := name
		if dir != "." || strings.HasPrefix(partial, "."+string(os.PathSeparator)) {
			value = filepath.Join(dir, name)
		}
		score := calculateScore(name, prefix)
		if entry.IsDir() {
			value += string(os.PathSeparator)
			score += 5
		}
		completions = append(completions, Completion{Value: value, Score: score})
	}

	sortCompletions(completions)
	if len(completions) > 20 {
		completions = completions[:20]
	}
	return completions
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore ranks a candidate; higher is better.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50
		score += 20 - len(value)
	}
	score -= len(value) / 2
	return score
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
