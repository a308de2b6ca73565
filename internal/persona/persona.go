// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona holds the team of switchable assistant personas.
//
// A persona is a named system-prompt template. The team keeps personas in a
// stable order so that "the first persona" is well defined; names are unique
// and personas are edited in place, never deleted.
//
// Team is not safe for concurrent use; the session owns it and serialises
// access.
package persona

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownPersona is returned when a name does not match any team member.
var ErrUnknownPersona = errors.New("unknown persona")

// Persona is a named system-prompt template defining the assistant's voice.
type Persona struct {
	Name   string `toml:"name" json:"name"`
	Prompt string `toml:"prompt" json:"prompt"`
}

// defaultTeam is the built-in set, in display order.
var defaultTeam = []Persona{
	{Name: "Alex (Strategist)", Prompt: "You are Alex, a strategic planner focused on long-term goals and market insights."},
	{Name: "Becky (Marketing Guru)", Prompt: "You are Becky, a creative marketing expert who knows how to grow a brand."},
	{Name: "Chris (Tech Lead)", Prompt: "You are Chris, a technical genius who explains complex systems simply."},
	{Name: "Dana (Sales Pro)", Prompt: "You are Dana, a persuasive and confident sales expert focused on conversions."},
	{Name: "Eli (Data Analyst)", Prompt: "You are Eli, a sharp data analyst who spots trends and patterns easily."},
}

// Defaults returns a copy of the built-in personas in display order.
func Defaults() []Persona {
	out := make([]Persona, len(defaultTeam))
	copy(out, defaultTeam)
	return out
}

// =============================================================================
// TEAM
// =============================================================================

// Team is an ordered name -> persona mapping.
type Team struct {
	order  []string
	byName map[string]Persona
}

// NewTeam builds a team from personas. Later duplicates overwrite the prompt
// of earlier ones but keep the first position.
func NewTeam(personas ...Persona) *Team {
	t := &Team{byName: make(map[string]Persona, len(personas))}
	for _, p := range personas {
		t.upsert(p)
	}
	return t
}

// DefaultTeam returns a fresh team seeded with the built-in personas.
func DefaultTeam() *Team {
	return NewTeam(defaultTeam...)
}

func (t *Team) upsert(p Persona) {
	if _, ok := t.byName[p.Name]; !ok {
		t.order = append(t.order, p.Name)
	}
	t.byName[p.Name] = p
}

// Len returns the number of personas.
func (t *Team) Len() int {
	return len(t.order)
}

// Names returns persona names in team order.
func (t *Team) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// List returns personas in team order.
func (t *Team) List() []Persona {
	out := make([]Persona, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}

// First returns the first persona in team order.
func (t *Team) First() (Persona, bool) {
	if len(t.order) == 0 {
		return Persona{}, false
	}
	return t.byName[t.order[0]], true
}

// Get looks up a persona by exact name.
func (t *Team) Get(name string) (Persona, bool) {
	p, ok := t.byName[name]
	return p, ok
}

// Index returns the position of name in team order, or -1.
func (t *Team) Index(name string) int {
	for i, n := range t.order {
		if n == name {
			return i
		}
	}
	return -1
}

// Resolve finds a persona from user input: an exact name, a 1-based index,
// or a case-insensitive name prefix that matches exactly one persona.
func (t *Team) Resolve(query string) (Persona, error) {
	query = strings.TrimSpace(query)
	if p, ok := t.byName[query]; ok {
		return p, nil
	}

	if idx, err := strconv.Atoi(query); err == nil {
		if idx >= 1 && idx <= len(t.order) {
			return t.byName[t.order[idx-1]], nil
		}
		return Persona{}, fmt.Errorf("%w: no persona #%d", ErrUnknownPersona, idx)
	}

	lower := strings.ToLower(query)
	var matches []Persona
	for _, name := range t.order {
		if lower != "" && strings.HasPrefix(strings.ToLower(name), lower) {
			matches = append(matches, t.byName[name])
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, query)
	default:
		return Persona{}, fmt.Errorf("%w: %q is ambiguous (%d matches)", ErrUnknownPersona, query, len(matches))
	}
}

// Edit replaces the prompt of an existing persona.
func (t *Team) Edit(name, prompt string) error {
	p, ok := t.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPersona, name)
	}
	p.Prompt = prompt
	t.byName[name] = p
	return nil
}

// Merge applies personas on top of the team: known names have their prompt
// replaced, new names are appended in the order given. It returns the names
// whose prompt actually changed or that were added.
func (t *Team) Merge(personas []Persona) []string {
	var changed []string
	for _, p := range personas {
		if p.Name == "" {
			continue
		}
		if cur, ok := t.byName[p.Name]; ok && cur.Prompt == p.Prompt {
			continue
		}
		t.upsert(p)
		changed = append(changed, p.Name)
	}
	return changed
}
