// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings for the chat view. Tab and the
// up/down arrows belong to the input line for command suggestions.
type KeyMap struct {
	Submit      key.Binding
	NextPersona key.Binding
	PrevPersona key.Binding
	EditPersona key.Binding
	SaveEdit    key.Binding
	CancelEdit  key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		NextPersona: key.NewBinding(
			key.WithKeys("ctrl+down", "f3"),
			key.WithHelp("F3", "next persona"),
		),
		PrevPersona: key.NewBinding(
			key.WithKeys("ctrl+up", "f2"),
			key.WithHelp("F2", "prev persona"),
		),
		EditPersona: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "edit persona"),
		),
		SaveEdit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save"),
		),
		CancelEdit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the status bar while chatting.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.PrevPersona, k.NextPersona, k.EditPersona, k.Quit}
}

// EditorHelp returns the bindings shown while the persona editor is open.
func (k KeyMap) EditorHelp() []key.Binding {
	return []key.Binding{k.SaveEdit, k.CancelEdit}
}

// FullHelp groups every binding.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Quit},
		{k.PrevPersona, k.NextPersona, k.EditPersona},
		{k.SaveEdit, k.CancelEdit},
		{k.PageUp, k.PageDown},
	}
}
